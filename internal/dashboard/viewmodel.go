package dashboard

import (
	"maps"
	"slices"

	"proxy-console/network"
)

// Op names a command button. The values double as history op names.
type Op string

const (
	OpStart       Op = "start"
	OpStop        Op = "stop"
	OpBlockSite   Op = "block-site"
	OpUnblockSite Op = "unblock-site"
	OpQuickBlock  Op = "quick-block"
	OpClearCache  Op = "clear-cache"
	OpClearLogs   Op = "clear-logs"
)

// Toast severities used by the controller itself. Clear operations may also
// surface whatever status string the backend returned.
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// CommandKey identifies one button: unblock and quick-block have one button
// per pattern/site, the rest are singletons with an empty Arg.
type CommandKey struct {
	Op  Op
	Arg string
}

type Toast struct {
	Message  string
	Severity string
	Visible  bool
	// Seq increases by one for every toast shown.
	Seq uint64
}

// ViewModel is everything the dashboard displays. Controller hands out
// copies; mutate it only through Controller methods.
type ViewModel struct {
	Snapshot    network.StatsSnapshot
	HasSnapshot bool
	BlockInput  string
	Toast       Toast
	Pending     map[CommandKey]bool
}

func (vm ViewModel) clone() ViewModel {
	out := vm
	out.Snapshot.BlockedSites = slices.Clone(vm.Snapshot.BlockedSites)
	out.Pending = maps.Clone(vm.Pending)
	if out.Pending == nil {
		out.Pending = map[CommandKey]bool{}
	}
	return out
}
