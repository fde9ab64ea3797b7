// Package profile stores application data that lives next to a session:
// the contact list as the user sees it and the chat log.
//
// A Profile is versioned JSON. The session blob is carried in it verbatim
// and never interpreted here; restore it through toxsession.Options.
//
//	p := profile.New()
//	p.Session = session.Save()
//	p.Append(profile.Entry{Time: time.Now(), FriendNumber: 0, Text: "hi"})
//	if err := profile.WriteFile("alice.json", p); err != nil {
//	    log.Fatal(err)
//	}
//
// Unmarshal rejects profiles whose version it does not know with
// ErrUnsupportedVersion.
package profile
