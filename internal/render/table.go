package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/crlszmr/vuln-scanner-sub000/config"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/api"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/i18n"
)

// Platforms prints the stored CPE dictionary entries.
func Platforms(out io.Writer, platforms []api.Platform) {
	fmt.Fprintf(out, "\nStored platforms: %s\n\n",
		config.Yellow(i18n.Thousands(len(platforms))))

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "CPE URI", "Deprecated", "Last Modified"})
	table.SetRowLine(true)

	for _, p := range platforms {
		deprecated := ""
		if p.Deprecated {
			deprecated = config.Red("yes")
		}

		table.Append([]string{
			strconv.Itoa(p.ID), p.CpeURI, deprecated, p.LastModified,
		})
	}

	table.Render()
}
