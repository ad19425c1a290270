// internal/dashboard/filter.go
package dashboard

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/report"
)

// Filter narrows the displayed list. Empty fields match everything.
type Filter struct {
	Status       api.Status
	Username     string
	Location     string
	Organization string
}

// Active reports whether any field is set.
func (f Filter) Active() bool {
	return f.Status != "" || f.Username != "" || f.Location != "" || f.Organization != ""
}

// needsFacets reports whether the filter can only be evaluated after Enrich.
func (f Filter) needsFacets() bool {
	return f.Location != "" || f.Organization != ""
}

// Facets are report-derived attributes of one investigation.
type Facets struct {
	Location     string
	Organization string
}

func (f Filter) match(inv api.Investigation, facets Facets, known bool) bool {
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	if f.Username != "" && !containsFold(inv.Username, f.Username) {
		return false
	}
	if f.needsFacets() && !known {
		return false
	}
	if f.Location != "" && !containsFold(facets.Location, f.Location) {
		return false
	}
	if f.Organization != "" && !containsFold(facets.Organization, f.Organization) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

// SetFilter replaces the active filter.
func (v *View) SetFilter(f Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

// Filter returns the active filter.
func (v *View) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Visible returns the loaded list with the active filter applied.
func (v *View) Visible() []api.Investigation {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]api.Investigation, 0, len(v.items))
	for _, inv := range v.items {
		facets, known := v.facets[inv.ID]
		if v.filter.match(inv, facets, known) {
			out = append(out, inv)
		}
	}
	return out
}

// Enrich fetches the report of every completed investigation that has no facets
// yet and records its GitHub location and organization. Individual failures are
// logged and skipped; only cancellation aborts the whole pass.
func (v *View) Enrich(ctx context.Context) error {
	v.mu.Lock()
	var pending []int64
	for _, inv := range v.items {
		if _, ok := v.facets[inv.ID]; !ok && inv.Status == api.StatusCompleted {
			pending = append(pending, inv.ID)
		}
	}
	v.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.enrichLimit)
	for _, id := range pending {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, err := v.backend.GetInvestigation(gctx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				v.logger.Debug("Skipping facets for investigation", zap.Int64("investigation_id", id), zap.Error(err))
				return nil
			}
			body := report.FromFindings(detail.Findings, v.logger)
			facets := Facets{}
			if gh := body.GitHub; gh != nil && gh.Found {
				facets.Location = strings.TrimSpace(gh.Location)
				facets.Organization = strings.TrimSpace(gh.Company)
			}

			v.mu.Lock()
			v.facets[id] = facets
			v.mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	v.logger.Debug("Enrichment finished", zap.Int("requested", len(pending)), zap.Error(err))
	return err
}

// FilterOptions returns the distinct locations and organizations seen so far.
func (v *View) FilterOptions() (locations, organizations []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	locSet := map[string]struct{}{}
	orgSet := map[string]struct{}{}
	for _, f := range v.facets {
		if f.Location != "" {
			locSet[f.Location] = struct{}{}
		}
		if f.Organization != "" {
			orgSet[f.Organization] = struct{}{}
		}
	}
	return sortedKeys(locSet), sortedKeys(orgSet)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
