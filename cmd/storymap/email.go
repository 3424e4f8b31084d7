package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javaniecampbell/storymap/internal/lib/email"
)

var emailPreviewCmd = &cobra.Command{
	Use:   "email-preview TEMPLATE",
	Short: "Render an email template with sample data to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := email.Template(args[0])
		data, ok := email.PreviewData[name]
		if !ok {
			return fmt.Errorf("unknown template %q", args[0])
		}
		return email.Render(os.Stdout, name, data)
	},
}
