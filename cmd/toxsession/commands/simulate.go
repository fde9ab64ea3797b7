package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/toxsession"
	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/event"
	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/profile"
	testsim "github.com/opd-ai/toxsession/testing"
)

// printer reports events and records messages in the profile log. It runs on
// a RunQueue, never on the session goroutine.
type printer struct {
	event.BaseListener
	profile *profile.Profile
}

func (p *printer) OnSelfConnectionStatus(e event.SelfConnectionStatus) {
	fmt.Printf("self connection: %s\n", e.Connection)
}

func (p *printer) OnFriendConnectionStatus(e event.FriendConnectionStatus) {
	fmt.Printf("friend %d connection: %s\n", e.FriendNumber, e.Connection)
}

func (p *printer) OnFriendRequest(e event.FriendRequest) {
	fmt.Printf("friend request from %X: %s\n", e.PublicKey[:8], e.Message)
}

func (p *printer) OnFriendMessage(e event.FriendMessage) {
	fmt.Printf("friend %d says: %s\n", e.FriendNumber, e.Message)
	p.profile.Append(profile.Entry{
		Time:         time.Now(),
		FriendNumber: e.FriendNumber,
		Text:         string(e.Message),
	})
}

func simulateCmd() *cobra.Command {
	var (
		duration time.Duration
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive the session against a simulated peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profile.ReadFile(profilePath())
			if err != nil {
				return err
			}

			factory := testsim.NewFactory()
			opts := toxsession.NewOptions()
			opts.Engine = factory.New
			opts.SavedataType = toxsession.SaveDataTypeToxSave
			opts.SavedataData = p.Session
			if passphrase != "" {
				opts.SavedataPassphrase = []byte(passphrase)
			}
			s, err := toxsession.New(opts)
			if err != nil {
				return err
			}
			defer s.Close()
			engine := factory.Last()

			peer, err := crypto.GenerateKeyPair()
			if err != nil {
				return err
			}
			n, err := s.AddFriendNoRequest(peer.Public[:])
			if err != nil {
				return err
			}
			p.PutContact(profile.Contact{FriendNumber: n, PublicKey: peer.Public, Name: "simulated peer"})

			queue := event.NewRunQueue()
			s.Callback(event.NewOrderedAdapter(&printer{profile: p}, queue))

			ctx, cancel := context.WithTimeout(cmd.Context(), duration)
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return s.Run(ctx)
			})
			g.Go(func() error {
				return simulatePeer(ctx, engine, peer.Public, interval)
			})

			err = g.Wait()
			queue.Close()
			if err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"function": "simulate",
				"entries":  len(p.Log),
			}).Info("Simulation finished")
			s.Callback(nil)
			return storeSession(s, p)
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 2*time.Second, "how long to run")
	cmd.Flags().DurationVar(&interval, "interval", 300*time.Millisecond, "time between peer messages")
	return cmd
}

// simulatePeer brings the peer online and sends a message every interval.
func simulatePeer(ctx context.Context, engine *testsim.SimulatedEngine, pk [32]byte, interval time.Duration) error {
	engine.Inject(
		testsim.SelfConnection(interfaces.RawConnectionUDP),
		testsim.FriendConnection(pk, interfaces.RawConnectionUDP),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 1; ; i++ {
		select {
		case <-ctx.Done():
			engine.Inject(testsim.FriendConnection(pk, interfaces.RawConnectionNone))
			return ctx.Err()
		case <-ticker.C:
			engine.Inject(testsim.FriendMessage(pk, fmt.Sprintf("ping %d", i)))
		}
	}
}
