package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opd-ai/toxsession"
	"github.com/opd-ai/toxsession/profile"
	testsim "github.com/opd-ai/toxsession/testing"
)

func initCmd() *cobra.Command {
	var (
		name   string
		status string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new identity and profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(profilePath()); err == nil && !force {
				return fmt.Errorf("profile %s exists, use --force to replace it", profilePath())
			}

			opts := toxsession.NewOptions()
			opts.Engine = testsim.NewFactory().New
			s, err := toxsession.New(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SelfSetName([]byte(name)); err != nil {
				return err
			}
			if err := s.SelfSetStatusMessage([]byte(status)); err != nil {
				return err
			}
			if err := storeSession(s, profile.New()); err != nil {
				return err
			}

			fmt.Printf("Address: %s\n", s.SelfAddress())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&status, "status", "", "status message")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing profile")
	return cmd
}

func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the address friends use to add you",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Printf("Address: %s\n", s.SelfAddress())
			fmt.Printf("Name:    %s\n", s.SelfName())
			fmt.Printf("Status:  %s\n", s.SelfStatusMessage())
			return nil
		},
	}
}
