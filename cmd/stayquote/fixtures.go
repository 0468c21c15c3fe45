package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"stayquote/internal/app/commands"
	catalogapp "stayquote/internal/app/handlers/catalog"
	domainauth "stayquote/internal/domain/auth"
	"stayquote/internal/domain/shared/daterange"
)

// catalogFixtures seeds an empty property on start-up, mostly for local runs.
type catalogFixtures struct {
	BlockedDates []struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Reason    string `json:"reason"`
	} `json:"blocked_dates"`
	StayRules []struct {
		Name               string `json:"name"`
		StartDate          string `json:"start_date"`
		EndDate            string `json:"end_date"`
		Priority           int    `json:"priority"`
		MinNights          int    `json:"min_nights"`
		EnforceExactNights bool   `json:"enforce_exact_nights"`
		ExactNights        *int   `json:"exact_nights"`
		AllowedCheckIn     []int  `json:"allowed_check_in_dow"`
		AllowedCheckOut    []int  `json:"allowed_check_out_dow"`
	} `json:"stay_rules"`
	PricingSeasons []struct {
		Name       string   `json:"name"`
		StartDate  string   `json:"start_date"`
		EndDate    string   `json:"end_date"`
		Currency   string   `json:"currency"`
		NightlyMin *float64 `json:"nightly_min"`
		NightlyMax *float64 `json:"nightly_max"`
	} `json:"pricing_seasons"`
}

func loadCatalogFixtures(ctx context.Context, path string, bus commands.Bus, logger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fx catalogFixtures
	if err := json.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	cmds, err := fx.commands()
	if err != nil {
		return err
	}

	ctx = domainauth.WithPrincipal(ctx, domainauth.Principal{Subject: "fixtures", Roles: []domainauth.Role{domainauth.RoleAdmin}})
	var errs []error
	for _, cmd := range cmds {
		if _, err := bus.Dispatch(ctx, cmd); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd.Key(), err))
		}
	}
	logger.Info("catalog fixtures loaded", "path", path, "commands", len(cmds), "failed", len(errs))
	return errors.Join(errs...)
}

func (fx catalogFixtures) commands() ([]commands.Command, error) {
	var out []commands.Command
	for _, b := range fx.BlockedDates {
		dr, err := daterange.Parse(b.StartDate, b.EndDate)
		if err != nil {
			return nil, fmt.Errorf("blocked_dates: %w", err)
		}
		out = append(out, catalogapp.AddBlockedRangeCommand{StartDate: dr.Start, EndDate: dr.End, Reason: b.Reason})
	}
	for _, r := range fx.StayRules {
		dr, err := daterange.Parse(r.StartDate, r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("stay_rules %q: %w", r.Name, err)
		}
		out = append(out, catalogapp.AddStayRuleCommand{
			Name:               r.Name,
			StartDate:          dr.Start,
			EndDate:            dr.End,
			Priority:           r.Priority,
			MinNights:          r.MinNights,
			EnforceExactNights: r.EnforceExactNights,
			ExactNights:        r.ExactNights,
			AllowedCheckIn:     r.AllowedCheckIn,
			AllowedCheckOut:    r.AllowedCheckOut,
		})
	}
	for _, s := range fx.PricingSeasons {
		dr, err := daterange.Parse(s.StartDate, s.EndDate)
		if err != nil {
			return nil, fmt.Errorf("pricing_seasons %q: %w", s.Name, err)
		}
		out = append(out, catalogapp.AddSeasonCommand{
			Name:       s.Name,
			StartDate:  dr.Start,
			EndDate:    dr.End,
			Currency:   s.Currency,
			NightlyMin: s.NightlyMin,
			NightlyMax: s.NightlyMax,
		})
	}
	return out, nil
}
