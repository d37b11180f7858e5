package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/export"
)

type exportUserResolver interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, p query.Params) ([]models.User, error)
}

// ExportService renders admin-facing exports: lobby rosters as PDF and user
// listings as CSV.
type ExportService struct {
	lobbies      lobbyRepository
	participants participantRepository
	teams        participantTeamResolver
	users        exportUserResolver
	pdf          *export.PDFExporter
	csv          *export.CSVExporter
	logger       *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(lobbies lobbyRepository, participants participantRepository, teams participantTeamResolver, users exportUserResolver, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		lobbies:      lobbies,
		participants: participants,
		teams:        teams,
		users:        users,
		pdf:          export.NewPDFExporter(),
		csv:          export.NewCSVExporter(),
		logger:       logger,
	}
}

// RosterPDF renders the participant roster of a lobby.
func (s *ExportService) RosterPDF(ctx context.Context, lobbyID string) ([]byte, string, error) {
	lobby, err := s.lobbies.FindByID(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "lobby not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lobby")
	}

	participants, err := s.participants.List(ctx, query.Params{Filters: query.Filters{"lobby_id": lobbyID}})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}

	sheet := export.Sheet{
		Title: fmt.Sprintf("Lobby roster: %s", lobby.Name),
		Columns: []export.Column{
			{Title: "Username", Weight: 2},
			{Title: "Team", Weight: 1.5},
			{Title: "Joined", Weight: 2.5},
		},
	}
	for _, p := range participants {
		username := p.UserID
		if user, err := s.users.FindByID(ctx, p.UserID); err == nil {
			username = user.Username
		}
		team := "-"
		if p.TeamID != nil {
			if resolved, err := s.teams.FindByID(ctx, *p.TeamID); err == nil {
				team = resolved.Name
			}
		}
		sheet.Rows = append(sheet.Rows, []string{username, team, p.CreatedAt.Format(time.RFC3339)})
	}

	payload, err := s.pdf.Render(sheet)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return payload, fmt.Sprintf("lobby-%s-roster.pdf", lobby.ID), nil
}

// UsersCSV renders the filtered user listing.
func (s *ExportService) UsersCSV(ctx context.Context, p query.Params) ([]byte, string, error) {
	users, err := s.users.List(ctx, p)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	sheet := export.Sheet{
		Columns: []export.Column{
			{Title: "ID"}, {Title: "Username"}, {Title: "Email"}, {Title: "Role"}, {Title: "Active"},
		},
	}
	for _, user := range users {
		sheet.Rows = append(sheet.Rows, []string{
			user.ID,
			user.Username,
			user.Email,
			user.Role.String(),
			fmt.Sprintf("%t", user.Active),
		})
	}

	payload, err := s.csv.Render(sheet)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render users csv")
	}
	return payload, "users.csv", nil
}
