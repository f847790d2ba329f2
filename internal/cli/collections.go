package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmaehler/davbox/davclient"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List calendars and what they hold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSetup()
		if err != nil {
			return err
		}
		// A calendar may hold only events or only tasks, so a single
		// capability pass would miss some. Merge both by path.
		seen := make(map[string]bool)
		var refs []davclient.CollectionRef
		for _, capability := range []davclient.Capability{davclient.CapEvents, davclient.CapTasks} {
			found, err := c.FindCollections(cmd.Context(), capability)
			if err != nil {
				return err
			}
			for _, ref := range found {
				if seen[ref.Href] {
					continue
				}
				seen[ref.Href] = true
				refs = append(refs, ref)
			}
		}
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "NAME\tHOLDS\tPATH")
		for _, ref := range refs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ref.DisplayName, ref.Capabilities, ref.Href)
		}
		return w.Flush()
	},
}

var addressbooksCmd = &cobra.Command{
	Use:   "addressbooks",
	Short: "List addressbooks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSetup()
		if err != nil {
			return err
		}
		refs, err := c.FindCollections(cmd.Context(), davclient.CapContacts)
		if err != nil {
			return err
		}
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "NAME\tPATH")
		for _, ref := range refs {
			fmt.Fprintf(w, "%s\t%s\n", ref.DisplayName, ref.Href)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(calendarsCmd)
	rootCmd.AddCommand(addressbooksCmd)
}
