package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tmaehler/davbox/davclient"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Work with contacts",
}

var (
	contactsBook string

	contactsAddGiven  string
	contactsAddFamily string
	contactsAddOrg    string
	contactsAddTitle  string
	contactsAddNote   string
	contactsAddEmails []string
	contactsAddPhones []string

	contactsEditName  string
	contactsEditOrg   string
	contactsEditTitle string
	contactsEditNote  string
)

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContactSearch(cmd, "")
	},
}

var contactsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search contacts by name, organization or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContactSearch(cmd, args[0])
	},
}

func runContactSearch(cmd *cobra.Command, query string) error {
	c, cfg, err := requireSetup()
	if err != nil {
		return err
	}
	contacts, err := c.SearchContacts(cmd.Context(), pickCollection(contactsBook, cfg.Addressbook), query)
	if err != nil {
		return err
	}
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tORG\tUID")
	for _, ct := range contacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ct.FullName, strings.Join(ct.Emails, ", "), strings.Join(ct.Phones, ", "),
			ct.Org, ct.UID)
	}
	return w.Flush()
}

var contactsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		contact, err := c.AddContact(cmd.Context(), davclient.ContactDraft{
			Book:       pickCollection(contactsBook, cfg.Addressbook),
			GivenName:  contactsAddGiven,
			FamilyName: contactsAddFamily,
			Org:        contactsAddOrg,
			Title:      contactsAddTitle,
			Note:       contactsAddNote,
			Emails:     contactsAddEmails,
			Phones:     contactsAddPhones,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created contact %s\n", contact.UID)
		return nil
	},
}

var contactsEditCmd = &cobra.Command{
	Use:   "edit <uid>",
	Short: "Edit a contact in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		ch := davclient.ContactChanges{
			FullName: changedString(cmd, "name", contactsEditName),
			Org:      changedString(cmd, "org", contactsEditOrg),
			Title:    changedString(cmd, "title", contactsEditTitle),
			Note:     changedString(cmd, "note", contactsEditNote),
		}
		if _, err := c.EditContact(cmd.Context(), pickCollection(contactsBook, cfg.Addressbook), args[0], ch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated contact %s\n", args[0])
		return nil
	},
}

var contactsRmCmd = &cobra.Command{
	Use:   "rm <uid>",
	Short: "Delete a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		if err := c.DeleteContact(cmd.Context(), pickCollection(contactsBook, cfg.Addressbook), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted contact %s\n", args[0])
		return nil
	},
}

func init() {
	contactsCmd.PersistentFlags().StringVar(&contactsBook, "book", "", "Addressbook to use (default from config)")

	contactsAddCmd.Flags().StringVar(&contactsAddGiven, "name", "", "Given name")
	contactsAddCmd.Flags().StringVar(&contactsAddFamily, "family", "", "Family name")
	contactsAddCmd.Flags().StringVar(&contactsAddOrg, "org", "", "Organization")
	contactsAddCmd.Flags().StringVar(&contactsAddTitle, "title", "", "Job title")
	contactsAddCmd.Flags().StringVar(&contactsAddNote, "note", "", "Free-form note")
	contactsAddCmd.Flags().StringArrayVar(&contactsAddEmails, "email", nil, "Email address (repeatable)")
	contactsAddCmd.Flags().StringArrayVar(&contactsAddPhones, "phone", nil, "Phone number (repeatable)")

	contactsEditCmd.Flags().StringVar(&contactsEditName, "name", "", "New full name")
	contactsEditCmd.Flags().StringVar(&contactsEditOrg, "org", "", "New organization")
	contactsEditCmd.Flags().StringVar(&contactsEditTitle, "title", "", "New job title")
	contactsEditCmd.Flags().StringVar(&contactsEditNote, "note", "", "New note")

	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsSearchCmd)
	contactsCmd.AddCommand(contactsAddCmd)
	contactsCmd.AddCommand(contactsEditCmd)
	contactsCmd.AddCommand(contactsRmCmd)
	rootCmd.AddCommand(contactsCmd)
}
