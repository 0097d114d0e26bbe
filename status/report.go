package status

import (
	"strconv"

	"github.com/giygas/nginx-status/stats"
)

const (
	// counterLen is the widest rendering of an int64 counter
	counterLen = len("-9223372036854775808")

	serverLine = "server accepts handled requests\n"
)

// MaxReportSize is the largest report Render can produce. The layout is fixed,
// so the bound is the literal text plus the widest value for each counter.
const MaxReportSize = len("Active connections:  \n") + counterLen +
	len(serverLine) +
	len("    \n") + 3*counterLen +
	len("Reading:  Writing:  Waiting:  \n") + 3*counterLen

// Render appends the stub status report for c to dst:
//
//	Active connections: <active> \n
//	server accepts handled requests\n
//	 <accepts> <handled> <requests> \n
//	Reading: <reading> Writing: <writing> Waiting: <waiting> \n
func Render(dst []byte, c stats.Counters) []byte {
	dst = append(dst, "Active connections: "...)
	dst = strconv.AppendInt(dst, c.Active, 10)
	dst = append(dst, " \n"...)

	dst = append(dst, serverLine...)

	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, c.Accepts, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, c.Handled, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, c.Requests, 10)
	dst = append(dst, " \n"...)

	dst = append(dst, "Reading: "...)
	dst = strconv.AppendInt(dst, c.Reading, 10)
	dst = append(dst, " Writing: "...)
	dst = strconv.AppendInt(dst, c.Writing, 10)
	dst = append(dst, " Waiting: "...)
	dst = strconv.AppendInt(dst, c.Waiting, 10)
	dst = append(dst, " \n"...)

	return dst
}
