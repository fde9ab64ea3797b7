package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opd-ai/toxsession/friend"
	"github.com/opd-ai/toxsession/profile"
)

func addFriendCmd() *cobra.Command {
	var alias string
	cmd := &cobra.Command{
		Use:   "add-friend <address> <message>",
		Short: "Queue a friend request to a 76-character address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("address is not hex: %w", err)
			}

			s, p, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.AddFriend(address, []byte(args[1]))
			switch {
			case errors.Is(err, friend.AddErrSetNewNospam):
				fmt.Println("Friend already known, nospam updated")
			case err != nil:
				return err
			default:
				pk, err := s.FriendPublicKey(n)
				if err != nil {
					return err
				}
				p.PutContact(profile.Contact{FriendNumber: n, PublicKey: pk, Name: alias})
				fmt.Printf("Friend %d added\n", n)
			}
			return storeSession(s, p)
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "local name for the friend")
	return cmd
}

func friendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "friends",
		Short: "List friends",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, p, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tPUBLIC KEY\tNAME\tPENDING")
			for _, n := range s.FriendList() {
				f, err := s.Friend(n)
				if err != nil {
					return err
				}
				name := f.Name
				if c, ok := p.Contact(n); ok && c.Name != "" {
					name = c.Name
				}
				fmt.Fprintf(w, "%d\t%X\t%s\t%t\n", n, f.PublicKey[:8], name, f.RequestPending)
			}
			return w.Flush()
		},
	}
}
