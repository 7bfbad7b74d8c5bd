package views

import (
	"context"
	"errors"
	"strconv"

	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
	"golang.org/x/sync/errgroup"
)

// UsersPage is the SMS recipient overview.
type UsersPage struct {
	Cards            []widgets.StatCard
	Users            domain.TownUsers
	Recipients       []domain.User
	UnavailableTowns []string
	Towns            []string
	Notice           *Notice
}

// loadTownUsers fetches every registry town's recipients concurrently. A town
// whose fetch fails contributes no users and is listed in the returned
// unavailable towns; only a rejected session aborts the load.
func (s *Service) loadTownUsers(ctx context.Context, api API) (domain.TownUsers, []string, error) {
	results := make([][]domain.User, len(domain.Towns))
	failed := make([]bool, len(domain.Towns))

	g, gctx := errgroup.WithContext(ctx)
	for i, town := range domain.Towns {
		g.Go(func() error {
			users, err := api.TownUsers(gctx, town.Name)
			if errors.Is(err, domain.ErrUnauthorized) {
				return err
			}
			if err != nil {
				s.metrics.TownFetchFailures.WithLabelValues(town.Name).Inc()
				s.logger.Warn("town users unavailable", "town", town.Name, "error", err)
				failed[i] = true
				return nil
			}
			results[i] = users
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	tu := make(domain.TownUsers, len(domain.Towns))
	var unavailable []string
	for i, town := range domain.Towns {
		if results[i] == nil {
			results[i] = []domain.User{}
		}
		tu[town.Name] = results[i]
		if failed[i] {
			unavailable = append(unavailable, town.Name)
		}
	}
	return tu, unavailable, nil
}

func (s *Service) Users(ctx context.Context, api API) (*UsersPage, error) {
	defer s.rendered("users")

	page := &UsersPage{Towns: domain.TownNames()}
	tu, unavailable, err := s.loadTownUsers(ctx, api)
	if err != nil {
		return nil, err
	}
	page.Users = tu
	page.Recipients = tu.Flatten()
	page.UnavailableTowns = unavailable
	page.Cards = []widgets.StatCard{
		{Title: "Total Users", Value: strconv.Itoa(tu.Total()), Subtitle: "Registered for alerts", Tone: widgets.ToneDefault},
		{Title: "Active Towns", Value: strconv.Itoa(tu.ActiveTowns()), Subtitle: "With registered users", Tone: widgets.ToneInfo},
		{Title: "Avg Users/Town", Value: strconv.Itoa(tu.AveragePerActiveTown()), Subtitle: "Distribution", Tone: widgets.ToneDefault},
	}
	return page, nil
}

// RegisterUser signs a phone number up for a town's alerts. An invalid form
// is rejected without contacting the backend.
func (s *Service) RegisterUser(ctx context.Context, api API, operator string, reg domain.Registration) (Notice, error) {
	if err := reg.Validate(); err != nil {
		return failure("Phone number and a valid town are required"), nil
	}
	err := api.RegisterUser(ctx, reg)
	s.Record(ctx, operator, domain.ActionRegisterUser, reg.Town, err)
	if err != nil {
		return s.mutationFailed(domain.ActionRegisterUser, err, "Failed to register user")
	}
	return success("User registered successfully!"), nil
}
