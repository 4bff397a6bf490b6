package saving

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	savingDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/saving"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/export"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, row *savingDatamodel.Saving) error
	GetByID(ctx context.Context, ownerID, id string) (*savingDatamodel.Saving, error)
	// Update writes row when the stored version equals row.Version and bumps
	// it; a stale row yields internal.ErrConcurrentUpdate.
	Update(ctx context.Context, row *savingDatamodel.Saving) error
	// Delete keeps the goal's contributions; their saving_id then dangles.
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string) ([]*savingDatamodel.Saving, error)
	ListContributions(ctx context.Context, ownerID string, filter ContributionFilter) ([]*savingDatamodel.SavingsContribution, error)
}

type Service struct {
	repo   Repository
	engine obligation.Realizer
	today  func() calendar.Date
	logger *slog.Logger
}

func NewService(repo Repository, engine obligation.Realizer, today func() calendar.Date, logger *slog.Logger) *Service {
	if today == nil {
		today = func() calendar.Date { return calendar.Today(nil) }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		engine: engine,
		today:  today,
		logger: logger,
	}
}

func (s *Service) Today() calendar.Date {
	return s.today()
}

func (s *Service) Create(ctx context.Context, dto CreateSavingDTO) (*Saving, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &savingDatamodel.Saving{
		UserID:                ownerID,
		Name:                  dto.Name,
		Type:                  dto.Type,
		CurrentAmount:         dto.CurrentAmount.Round(money.Scale),
		TargetAmount:          money.ToNull(dto.TargetAmount),
		RecurringContribution: money.ToNull(dto.RecurringContribution),
		Duration:              dto.Duration,
		StartDate:             calendar.TimePtr(dto.StartDate),
		NextContributionDate:  calendar.TimePtr(dto.NextContributionDate),
		Version:               1,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create saving", "error", err, "owner_id", ownerID)
		return nil, internal.NewStorageError("failed to create saving", err)
	}

	s.logger.Info("saving created", "saving_id", row.ID, "owner_id", ownerID)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Saving, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get saving")
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateSavingDTO) (*Saving, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, repoError(err, "failed to get saving")
	}

	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Type != nil {
		row.Type = *dto.Type
	}
	if dto.CurrentAmount != nil {
		row.CurrentAmount = dto.CurrentAmount.Round(money.Scale)
	}
	if dto.TargetAmount != nil {
		row.TargetAmount = money.ToNull(dto.TargetAmount)
	}
	if dto.RecurringContribution != nil {
		row.RecurringContribution = money.ToNull(dto.RecurringContribution)
	}
	if dto.Duration != nil {
		row.Duration = dto.Duration
	}
	if dto.StartDate != nil {
		row.StartDate = calendar.TimePtr(dto.StartDate)
	}
	if dto.NextContributionDate != nil {
		row.NextContributionDate = calendar.TimePtr(dto.NextContributionDate)
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, repoError(err, "failed to update saving")
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return repoError(err, "failed to delete saving")
	}
	s.logger.Info("saving deleted", "saving_id", id, "owner_id", ownerID)
	return nil
}

func (s *Service) List(ctx context.Context) ([]*Saving, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, internal.NewStorageError("failed to list savings", err)
	}

	savings := make([]*Saving, 0, len(rows))
	for _, row := range rows {
		savings = append(savings, FromDataModel(row))
	}
	return savings, nil
}

// Contribute deposits one recurring contribution into the goal.
func (s *Service) Contribute(ctx context.Context, id string, dto ContributionDTO) (*ContributionResult, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, next, err := s.engine.Realize(ctx, obligation.KindSaving, id, strings.TrimSpace(dto.Note))
	if err != nil {
		if errors.Is(err, obligation.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	current.ApplyRealization(next, time.Now())
	contribution := ContributionFromDataModel(ContributionFromEntry(entry))
	contribution.SavingName = current.Name
	contribution.CreatedAt = current.UpdatedAt
	return &ContributionResult{Contribution: contribution, Saving: current}, nil
}

// Contributions returns the filtered history with goal names resolved.
func (s *Service) Contributions(ctx context.Context, filter ContributionFilter) ([]*Contribution, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListContributions(ctx, ownerID, filter)
	if err != nil {
		return nil, internal.NewStorageError("failed to list contributions", err)
	}
	goals, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, internal.NewStorageError("failed to list savings", err)
	}
	names := make(map[string]string, len(goals))
	for _, g := range goals {
		names[g.ID] = g.Name
	}

	contributions := make([]*Contribution, 0, len(rows))
	for _, row := range rows {
		c := ContributionFromDataModel(row)
		c.SavingName = report.Label(c.SavingID, names, report.DeletedLabel)
		contributions = append(contributions, c)
	}
	return contributions, nil
}

func (s *Service) Summary(ctx context.Context) (SummaryResponse, error) {
	ownerID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return SummaryResponse{}, err
	}
	rows, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return SummaryResponse{}, internal.NewStorageError("failed to list savings", err)
	}

	goals := make([]obligation.Obligation, 0, len(rows))
	resp := SummaryResponse{Goals: make([]GoalProgress, 0, len(rows))}
	for _, row := range rows {
		goal := *ToObligation(row)
		goals = append(goals, goal)

		progress := GoalProgress{ID: row.ID, Name: row.Name}
		if pct, ok := report.SavingsProgress(goal); ok {
			progress.Progress = &pct
		}
		resp.Goals = append(resp.Goals, progress)
	}
	resp.SavingsSummary = report.Savings(goals)
	return resp, nil
}

func (s *Service) ExportSavings(ctx context.Context, format export.Format) ([]byte, string, error) {
	savings, err := s.List(ctx)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   "Savings",
		Headers: []string{"Name", "Type", "Current Bal", "Target", "Monthly", "Progress"},
		Rows:    make([][]string, 0, len(savings)),
	}
	for _, sv := range savings {
		progress := "N/A"
		if sv.Progress != nil {
			progress = strconv.FormatInt(*sv.Progress, 10) + "%"
		}
		table.Rows = append(table.Rows, []string{
			sv.Name,
			string(sv.Type),
			money.Format(sv.CurrentAmount),
			money.FormatOptional(sv.TargetAmount),
			money.FormatOptional(sv.RecurringContribution),
			progress,
		})
	}

	doc := export.Document{
		Title:   "Savings Report",
		Summary: []export.Field{{Label: "Generated on", Value: s.today().String()}},
		Tables:  []export.Table{table},
	}
	return s.render(format, doc, "savings", len(table.Rows))
}

func (s *Service) ExportContributions(ctx context.Context, filter ContributionFilter, format export.Format) ([]byte, string, error) {
	contributions, err := s.Contributions(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   "Contributions",
		Headers: []string{"Date", "Saving Name", "Amount Contributed"},
		Rows:    make([][]string, 0, len(contributions)),
	}
	total := decimal.Zero
	for _, c := range contributions {
		total = total.Add(c.Amount)
		table.Rows = append(table.Rows, []string{c.ContributionDate.String(), c.SavingName, money.Format(c.Amount)})
	}

	doc := export.Document{
		Title:   "Savings Contribution History",
		Summary: []export.Field{{Label: "Total contributed", Value: money.Format(total)}},
		Tables:  []export.Table{table},
	}
	return s.render(format, doc, "contribution_history", len(table.Rows))
}

func (s *Service) render(format export.Format, doc export.Document, base string, rows int) ([]byte, string, error) {
	data, err := export.Render(format, doc)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to render export", err)
	}
	s.logger.Info("savings exported", "format", format, "report", base, "rows", rows)
	return data, format.Filename(base, s.today().String()), nil
}

func repoError(err error, message string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewStorageError(message, err)
}
