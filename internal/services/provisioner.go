package services

import (
	"context"
	"fmt"

	"daybook/internal/core"
	"daybook/internal/ledger"
	"daybook/internal/log"
)

const (
	// DefaultProvisionWindow is how many days, starting at the target, are
	// guaranteed to exist after Provision.
	DefaultProvisionWindow = 32

	// MinProvisionWindow keeps every summary window inside one provisioning
	// pass. A month window from the 1st of a 31-day month spans 32 days.
	MinProvisionWindow = 32
)

// Provisioner fills missing ledger days ahead of a requested date so range
// reads never meet gaps.
type Provisioner struct {
	store  ledger.Store
	window int
}

// NewProvisioner returns a provisioner. Windows shorter than
// MinProvisionWindow are raised to it.
func NewProvisioner(store ledger.Store, window int) *Provisioner {
	if window < MinProvisionWindow {
		window = MinProvisionWindow
	}
	return &Provisioner{store: store, window: window}
}

// Window returns the number of days covered by one Provision call.
func (p *Provisioner) Window() int {
	return p.window
}

// Provision makes sure every day in [target, target+window-1] has an entry,
// inserting zero-valued entries where missing. Days past core.MaxDate are
// not provisioned. Existing days are never
// rewritten, so a second call performs no writes. The pass is not
// transactional: on error the days created so far stay and the count is
// returned alongside the error; calling again resumes.
func (p *Provisioner) Provision(ctx context.Context, target core.Date) (int, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}

	created := 0
	for i := 0; i < p.window; i++ {
		day := target.AddDays(i)
		if day.After(core.MaxDate) {
			break
		}

		exists, err := p.store.Exists(ctx, day)
		if err != nil {
			return created, fmt.Errorf("check day %s: %w", day, err)
		}
		if exists {
			continue
		}

		if err := p.store.Upsert(ctx, core.BlankEntry(day)); err != nil {
			return created, fmt.Errorf("provision day %s: %w", day, err)
		}
		created++
	}

	if created > 0 {
		logger(ctx).DebugContext(ctx, "Provisioned ledger days",
			"from", target.String(),
			"window", p.window,
			"created", created)
	}
	return created, nil
}

// ProvisionMonth provisions from the first day of the month, which covers the
// whole month because the window is at least 32 days.
func (p *Provisioner) ProvisionMonth(ctx context.Context, year, month int) (int, error) {
	return p.Provision(ctx, core.NewDate(year, month, 1))
}

// ProvisionRange provisions [from, to] in window-sized steps.
func (p *Provisioner) ProvisionRange(ctx context.Context, from, to core.Date) (int, error) {
	total := 0
	for day := from; !day.After(to); day = day.AddDays(p.window) {
		n, err := p.Provision(ctx, day)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// logger returns the logger carried by ctx, so service lines keep the
// request ID set by the caller.
func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentLedger)
}
