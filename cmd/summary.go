package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/meshworks/meshbox/internal/logging"
	"github.com/meshworks/meshbox/internal/sandbox"
)

// printSummary renders the launched topology after a successful run.
func printSummary(w io.Writer, result *sandbox.RunResult) {
	fmt.Fprintln(w, logging.Headline("Summary"))
	fmt.Fprintf(w, "Mesh was started with %d core instance(s), %d agent instance(s) and %d proxy instance(s).\n",
		len(result.CorePids), len(result.AgentPids), result.ProxyInstanceCount)
	fmt.Fprintf(w, "The cluster is reachable at %s://%s:%d\n\n", sandbox.DefaultScheme, result.Host, sandbox.StatusPort)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Role", "#", "PID", "Address"})
	for i, pid := range result.CorePids {
		table.Append([]string{"core", strconv.Itoa(i), strconv.Itoa(pid), result.CoreAddrs[i].String()})
	}
	for i, pid := range result.AgentPids {
		table.Append([]string{"agent", strconv.Itoa(i), strconv.Itoa(pid), result.AgentAddrs[i].String()})
	}
	table.Render()
}
