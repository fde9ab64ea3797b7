package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/toxsession"
	"github.com/opd-ai/toxsession/profile"
	testsim "github.com/opd-ai/toxsession/testing"
)

var (
	home       string
	passphrase string
	verbose    bool
)

// Execute runs the command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "toxsession",
		Short:        "Manage session profiles offline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".toxsession")
			}
			return os.MkdirAll(home, 0o700)
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "profile dir (default ~/.toxsession)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the session blob")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(initCmd(), addressCmd(), addFriendCmd(), friendsCmd(), simulateCmd())
	return root
}

func profilePath() string {
	return filepath.Join(home, "profile.json")
}

// openSession restores the session stored in the profile. The engine is a
// simulated one; nothing touches the network.
func openSession() (*toxsession.Session, *profile.Profile, error) {
	p, err := profile.ReadFile(profilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("no profile in %s, run init first", home)
		}
		return nil, nil, err
	}

	opts := toxsession.NewOptions()
	opts.Engine = testsim.NewFactory().New
	opts.SavedataType = toxsession.SaveDataTypeToxSave
	opts.SavedataData = p.Session
	if passphrase != "" {
		opts.SavedataPassphrase = []byte(passphrase)
	}

	s, err := toxsession.New(opts)
	if err != nil {
		if errors.Is(err, toxsession.NewErrLoadEncrypted) {
			return nil, nil, fmt.Errorf("profile is encrypted, pass the right --passphrase: %w", err)
		}
		return nil, nil, err
	}
	return s, p, nil
}

// storeSession writes the session blob back into the profile.
func storeSession(s *toxsession.Session, p *profile.Profile) error {
	if passphrase == "" {
		p.Session = s.Save()
	} else {
		blob, err := s.SaveEncrypted([]byte(passphrase))
		if err != nil {
			return err
		}
		p.Session = blob
	}
	return profile.WriteFile(profilePath(), p)
}
