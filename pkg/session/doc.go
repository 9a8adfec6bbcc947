// Package session is the breakpoint reaction loop of an adaptive layout.
//
// A [Session] owns a [stash.Stash] seeded from an injected template and
// reacts to three kinds of events:
//
//   - viewport changes ([Session.Resize]): a narrower viewport downsizes the
//     layout, a wider one restores stashed layouts while they fit;
//   - structural edits (tab moved, added, closed): a recompute with
//     write-back runs after a fixed debounce delay; a newer edit supersedes
//     a pending recompute instead of cancelling it;
//   - model changes ([Session.NotifyModelChange]): an immediate recompute
//     without write-back.
//
// The session subscribes to the mutation notifications of the layout it
// shows, so edits made directly on that tree are picked up too. Its own
// write-back does not trigger further recomputes.
//
// When the best effort still does not fit, [Overflow] tells the shell to
// size the canvas absolutely and scroll.
//
//	s, err := session.New(session.Config{Template: template.Default()})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	if err := s.Start(ctx, 1700, 900); err != nil {
//	    return err
//	}
//	ov, err := s.Resize(ctx, 900, 900)
//
// [stash.Stash]: github.com/matzehuels/flexdock/pkg/stash.Stash
package session
