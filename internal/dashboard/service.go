// Package dashboard assembles the per-user overview shown on the landing page.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"resume-builder/internal/applications"
	"resume-builder/internal/credits"
)

type Counter interface {
	Count(ctx context.Context, userID string) (int, error)
}

type ApplicationSource interface {
	CountByStatus(ctx context.Context, userID string) (map[applications.Status]int, error)
	List(ctx context.Context, userID string, f applications.ListFilter) ([]applications.Application, error)
}

type BalanceSource interface {
	Get(ctx context.Context, userID string) (credits.Balance, error)
}

type UnreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

const recentApplications = 5

type ApplicationSummary struct {
	Total    int                         `json:"total"`
	ByStatus map[applications.Status]int `json:"byStatus"`
	Recent   []applications.Application  `json:"recent"`
}

type CreditSummary struct {
	Balance int    `json:"balance"`
	Plan    string `json:"plan"`
	Low     bool   `json:"low"`
}

type Overview struct {
	Resumes             int                `json:"resumes"`
	Certificates        int                `json:"certificates"`
	Applications        ApplicationSummary `json:"applications"`
	Credits             CreditSummary      `json:"credits"`
	UnreadNotifications int                `json:"unreadNotifications"`
}

type Service struct {
	Resumes       Counter
	Certificates  Counter
	Applications  ApplicationSource
	Credits       BalanceSource
	Notifications UnreadCounter
}

// Overview fans out to every source concurrently. The first failure cancels
// the rest.
func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.Resumes.Count(gctx, userID)
		if err != nil {
			return fmt.Errorf("count resumes: %w", err)
		}
		out.Resumes = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Certificates.Count(gctx, userID)
		if err != nil {
			return fmt.Errorf("count certificates: %w", err)
		}
		out.Certificates = n
		return nil
	})
	g.Go(func() error {
		byStatus, err := s.Applications.CountByStatus(gctx, userID)
		if err != nil {
			return fmt.Errorf("count applications: %w", err)
		}
		total := 0
		for _, n := range byStatus {
			total += n
		}
		out.Applications.ByStatus = byStatus
		out.Applications.Total = total
		return nil
	})
	g.Go(func() error {
		recent, err := s.Applications.List(gctx, userID, applications.ListFilter{Limit: recentApplications})
		if err != nil {
			return fmt.Errorf("recent applications: %w", err)
		}
		if recent == nil {
			recent = []applications.Application{}
		}
		out.Applications.Recent = recent
		return nil
	})
	g.Go(func() error {
		b, err := s.Credits.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		out.Credits = CreditSummary{Balance: b.Balance, Plan: b.Plan, Low: b.Balance <= credits.LowBalanceThreshold}
		return nil
	})
	g.Go(func() error {
		n, err := s.Notifications.CountUnread(gctx, userID)
		if err != nil {
			return fmt.Errorf("count notifications: %w", err)
		}
		out.UnreadNotifications = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}
