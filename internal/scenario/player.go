package scenario

import (
	"context"
	"log/slog"
	"time"

	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/router"
	"github.com/roomkit/roomkit/internal/viewer"
)

// maxTimerPasses stops an app that keeps rescheduling zero-delay timers
// from stalling a skipped wait.
const maxTimerPasses = 10000

// Host is the part of the app host a scenario drives.
type Host interface {
	AddViewer(name string, st viewer.State) (*viewer.Viewer, error)
	Viewer(name string) *viewer.Viewer
	Router() *router.Router
	RunTimers(now time.Time) int
	NextTimer() (time.Time, bool)
	OnSuspend()
	OnResume()
	DrawPanel()
}

type Options struct {
	Host Host
	// Clock makes waits instant. Nil waits on the wall clock.
	Clock  *Clock
	Logger *slog.Logger
}

// Player replays a scenario. Events and timer passes run one at a time on
// the goroutine that called Play.
type Player struct {
	host  Host
	clock *Clock
	log   *slog.Logger
}

func NewPlayer(opts Options) *Player {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Player{host: opts.Host, clock: opts.Clock, log: log.With("component", "scenario")}
}

// Play adds the scenario's viewers, then runs its events in order. Errors
// from a single event are logged and the scenario continues; only a
// cancelled context stops it early.
func (p *Player) Play(ctx context.Context, f *File) error {
	for _, spec := range f.Viewers {
		p.add(spec)
	}
	for i, ev := range f.Events {
		if err := p.Wait(ctx, ev.After.Std()); err != nil {
			return err
		}
		if err := p.step(ctx, ev); err != nil {
			p.log.Warn("event skipped", "index", i+1, "type", ev.Type, "err", err)
		}
	}
	return nil
}

func (p *Player) step(ctx context.Context, ev Event) error {
	r := p.host.Router()
	switch ev.Type {
	case KindAdd:
		p.add(*ev.Viewer)
		return nil
	case KindWait:
		return nil
	case KindSuspend:
		p.host.OnSuspend()
		return nil
	case KindResume:
		p.host.OnResume()
		return nil
	case KindPanel:
		p.host.DrawPanel()
		return nil
	}

	v := p.host.Viewer(ev.User)
	if v == nil {
		return errdef.New(errdef.CodeScenario, "unknown viewer %q", ev.User)
	}
	switch ev.Type {
	case KindEnter:
		r.Enter(ctx, v)
	case KindLeave:
		r.Leave(ctx, v)
	case KindChat:
		r.Chat(ctx, v, ev.Message)
	case KindTip:
		r.Tip(ctx, v, ev.Amount, ev.Message)
	default:
		return errdef.New(errdef.CodeScenario, "unknown type %q", ev.Type)
	}
	return nil
}

func (p *Player) add(spec ViewerSpec) {
	st, err := spec.State()
	if err != nil {
		p.log.Warn("viewer skipped", "name", spec.Name, "err", err)
		return
	}
	// The host reports duplicates itself.
	_, _ = p.host.AddViewer(spec.Name, st)
}

// Wait lets d pass, firing app timers as they come due.
func (p *Player) Wait(ctx context.Context, d time.Duration) error {
	if p.clock != nil {
		p.skip(d)
		return ctx.Err()
	}
	return p.sleep(ctx, d)
}

// Advance moves the room forward by d without blocking. A virtual clock
// skips ahead; on the wall clock the timers already due fire.
func (p *Player) Advance(d time.Duration) {
	if p.clock != nil {
		p.skip(d)
		return
	}
	p.host.RunTimers(time.Now())
}

func (p *Player) skip(d time.Duration) {
	deadline := p.clock.Now().Add(d)
	for pass := 0; pass < maxTimerPasses; pass++ {
		next, ok := p.host.NextTimer()
		if !ok || next.After(deadline) {
			break
		}
		p.clock.Set(next)
		if p.host.RunTimers(p.clock.Now()) == 0 {
			break
		}
	}
	p.clock.Set(deadline)
	p.host.RunTimers(deadline)
}

func (p *Player) sleep(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C
	for {
		wake := deadline
		if next, ok := p.host.NextTimer(); ok && next.Before(wake) {
			wake = next
		}
		timer.Reset(time.Until(wake))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-timer.C:
			p.host.RunTimers(now)
			if !now.Before(deadline) {
				return nil
			}
		}
	}
}
