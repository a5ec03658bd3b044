package rebalance

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"portfolio_rebalancer/internal/domain/entity"

	"github.com/google/uuid"
)

// usdEpsilon is the USD amount below which a remainder counts as zero.
const usdEpsilon = 1e-9

var (
	newID = uuid.NewString
	now   = time.Now
)

// fundingNeed is the USD still required for one target canonical.
type fundingNeed struct {
	target    entity.DesiredUsdAllocation
	canonical string
	desired   float64
	held      float64
	raw       float64
	funded    float64
	remaining float64
}

// fundingSource is the reallocatable part of one held item.
type fundingSource struct {
	item      entity.InputItem
	canonical string
	available float64
	remaining float64
}

// DetermineRebalanceActions reconciles current holdings with target positions.
//
// Holdings of canonicals outside the target are fully reallocatable; holdings of a target
// canonical only contribute their excess over that target. Targets already covered by
// holdings of the same canonical need no action. When reallocatable USD falls short of the
// total need, every need is scaled by available/required. Sources are drained in descending
// order of their held USD value, each into whichever need has the most left to fund at that
// moment, so the action count is at most len(sources)+len(needs)-1.
//
// The output is invalid only when funding is required and nothing can be sold.
func DetermineRebalanceActions(current []entity.InputItem, target []entity.DesiredUsdAllocation) (*entity.RebalanceOutput, error) {
	if len(target) == 0 {
		return nil, entity.NewInvalidInputError("target allocations must not be empty")
	}
	for _, t := range target {
		if math.IsNaN(t.UsdValue) || t.UsdValue < 0 {
			return nil, entity.NewInvalidInputError(fmt.Sprintf("target %s has invalid usd value %v", t.Asset.Symbol, t.UsdValue))
		}
	}
	for _, it := range current {
		if math.IsNaN(it.UsdValue) || it.UsdValue < 0 {
			return nil, entity.NewInvalidInputError(fmt.Sprintf("holding %s has invalid usd value %v", it.Asset.Symbol, it.UsdValue))
		}
	}

	out := &entity.RebalanceOutput{
		Valid:     true,
		ID:        newID(),
		CreatedAt: now().UTC(),
		Actions:   []entity.RebalanceAction{},
		Logs:      []string{},
	}
	logf := func(format string, args ...any) {
		out.Logs = append(out.Logs, fmt.Sprintf(format, args...))
	}

	// Merge target lines per canonical, keeping the first line as the destination.
	needs := make([]*fundingNeed, 0, len(target))
	byCanonical := make(map[string]*fundingNeed, len(target))
	var allocationTotal float64
	for _, t := range target {
		allocationTotal += t.UsdValue
		c := strings.ToUpper(t.Asset.Canonical)
		if n, ok := byCanonical[c]; ok {
			n.desired += t.UsdValue
			continue
		}
		n := &fundingNeed{target: t, canonical: c, desired: t.UsdValue}
		byCanonical[c] = n
		needs = append(needs, n)
	}

	var portfolioTotal float64
	for _, it := range current {
		portfolioTotal += it.UsdValue
		if n, ok := byCanonical[strings.ToUpper(it.Asset.Canonical)]; ok {
			n.held += it.UsdValue
		}
	}
	logf("Portfolio total: $%.2f across %d holdings", portfolioTotal, len(current))
	logf("Allocation total: $%.2f across %d targets", allocationTotal, len(needs))

	excess := make(map[string]float64)
	var required float64
	for _, n := range needs {
		if n.held >= n.desired-usdEpsilon {
			logf("Target %s already satisfied: holding $%.2f of $%.2f", n.canonical, n.held, n.desired)
			if surplus := n.held - n.desired; surplus > usdEpsilon {
				excess[n.canonical] = surplus
			}
			continue
		}
		n.raw = n.desired - n.held
		required += n.raw
		logf("Target %s needs $%.2f (desired $%.2f, held $%.2f)", n.canonical, n.raw, n.desired, n.held)
	}

	sources := collectSources(current, byCanonical, excess)
	var available float64
	for _, s := range sources {
		available += s.available
	}
	logf("Reallocatable total: $%.2f from %d sources", available, len(sources))

	if required <= usdEpsilon {
		logf("Portfolio already matches the target allocation, no swaps required")
		return out, nil
	}
	if available <= usdEpsilon {
		out.Valid = false
		out.ErrorMessage = fmt.Sprintf("no reallocatable holdings to fund $%.2f of target positions", required)
		logf("Nothing to sell: %s", out.ErrorMessage)
		return out, nil
	}

	scale := 1.0
	if available < required {
		scale = available / required
		logf("Funding shortfall: available $%.2f < required $%.2f, scaling needs by %.6f", available, required, scale)
	}

	funded := make([]*fundingNeed, 0, len(needs))
	for _, n := range needs {
		if n.raw <= 0 {
			continue
		}
		n.funded = n.raw * scale
		n.remaining = n.funded
		if scale < 1 {
			logf("Target %s scaled need: $%.2f (raw $%.2f)", n.canonical, n.funded, n.raw)
		}
		funded = append(funded, n)
	}
	sort.SliceStable(funded, func(i, j int) bool {
		return funded[i].funded > funded[j].funded
	})

	for _, src := range sources {
		for src.remaining > usdEpsilon {
			need := largestNeed(funded)
			if need == nil {
				break
			}
			amount := math.Min(src.remaining, need.remaining)
			if src.canonical != need.canonical {
				action := newSwapAction(src, need, amount)
				out.Actions = append(out.Actions, action)
				logf("Swap $%.2f of %s (%.8f tokens) into %s (%.8f tokens)",
					amount, src.item.Asset.Symbol, action.FromTokenValue, need.target.Asset.Symbol, action.ToTokenValue)
			}
			src.remaining -= amount
			need.remaining -= amount
		}
	}

	logf("Proposed %d swap actions", len(out.Actions))
	return out, nil
}

// collectSources returns reallocatable holdings ordered by descending held USD value,
// ties in input order. Excess of an over-target canonical is drawn from its largest holdings first.
func collectSources(current []entity.InputItem, targets map[string]*fundingNeed, excess map[string]float64) []*fundingSource {
	ordered := make([]entity.InputItem, len(current))
	copy(ordered, current)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UsdValue > ordered[j].UsdValue
	})

	sources := make([]*fundingSource, 0, len(ordered))
	for _, it := range ordered {
		c := strings.ToUpper(it.Asset.Canonical)
		var avail float64
		if _, isTarget := targets[c]; !isTarget {
			avail = it.UsdValue
		} else {
			avail = math.Min(it.UsdValue, excess[c])
			excess[c] -= avail
		}
		if avail <= usdEpsilon {
			continue
		}
		sources = append(sources, &fundingSource{item: it, canonical: c, available: avail, remaining: avail})
	}
	return sources
}

// largestNeed returns the need with the most USD left to fund, the earliest on ties,
// or nil once every need is funded.
func largestNeed(needs []*fundingNeed) *fundingNeed {
	var best *fundingNeed
	for _, n := range needs {
		if n.remaining <= usdEpsilon {
			continue
		}
		if best == nil || n.remaining > best.remaining {
			best = n
		}
	}
	return best
}

func newSwapAction(src *fundingSource, need *fundingNeed, amount float64) entity.RebalanceAction {
	action := entity.RebalanceAction{
		Type:          entity.ActionSwap,
		From:          src.item.Balance,
		FromCanonical: src.item.Asset.Canonical,
		FromUsdValue:  amount,
		To:            need.target.Asset,
		ToPrice:       need.target.Price,
	}
	if rate := src.item.Price.UsdRate; rate > 0 {
		action.FromTokenValue = amount / rate
	}
	if rate := need.target.Price.UsdRate; rate > 0 {
		action.ToTokenValue = amount / rate
	}
	return action
}
