package dashboard

import (
	"slices"
	"strconv"
)

// View is the projection of a ViewModel onto the dashboard's display
// elements: the four counters, the status indicator and text, the block
// input, the blocked-site list and the toast.
type View struct {
	TotalRequests     string
	BlockedRequests   string
	CachedItems       string
	BlockedSitesCount string

	Running        bool
	IndicatorClass string
	StatusText     string

	BlockInput   string
	BlockedSites []string

	ToastText    string
	ToastClass   string
	ToastVisible bool

	Pending map[CommandKey]bool
}

const unknownCounter = "-"

// Render is pure: the same ViewModel always yields the same View.
func Render(vm ViewModel) View {
	v := View{
		TotalRequests:     unknownCounter,
		BlockedRequests:   unknownCounter,
		CachedItems:       unknownCounter,
		BlockedSitesCount: unknownCounter,
		IndicatorClass:    "status-indicator",
		StatusText:        "UNKNOWN",
		BlockInput:        vm.BlockInput,
		ToastText:         vm.Toast.Message,
		ToastVisible:      vm.Toast.Visible,
		ToastClass:        toastClass(vm.Toast),
		Pending:           make(map[CommandKey]bool, len(vm.Pending)),
	}
	for k, p := range vm.Pending {
		if p {
			v.Pending[k] = true
		}
	}
	if !vm.HasSnapshot {
		return v
	}

	s := vm.Snapshot
	v.TotalRequests = strconv.FormatInt(s.TotalRequests, 10)
	v.BlockedRequests = strconv.FormatInt(s.BlockedRequests, 10)
	v.CachedItems = strconv.FormatInt(s.CachedItems, 10)
	v.BlockedSitesCount = strconv.FormatInt(s.BlockedSitesCount, 10)
	v.BlockedSites = slices.Clone(s.BlockedSites)
	v.Running = s.ServerRunning
	if s.ServerRunning {
		v.IndicatorClass = "status-indicator running"
		v.StatusText = "RUNNING"
	} else {
		v.IndicatorClass = "status-indicator stopped"
		v.StatusText = "STOPPED"
	}
	return v
}

func toastClass(t Toast) string {
	if t.Seq == 0 {
		return "toast"
	}
	cls := "toast"
	if t.Visible {
		cls += " show"
	}
	if t.Severity != "" {
		cls += " " + t.Severity
	}
	return cls
}
