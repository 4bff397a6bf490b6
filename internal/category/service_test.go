package category_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/category"
	categoryDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/category"
	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCategory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Suite")
}

type MockRepository struct {
	categories map[string]*categoryDatamodel.Category
	usage      map[string]category.Usage
	deleted    []string
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		categories: make(map[string]*categoryDatamodel.Category),
		usage:      make(map[string]category.Usage),
	}
}

func (m *MockRepository) visibleTo(ownerID string, c *categoryDatamodel.Category) bool {
	return c.UserID == nil || *c.UserID == ownerID
}

func (m *MockRepository) ListVisible(_ context.Context, ownerID string) ([]*categoryDatamodel.Category, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*categoryDatamodel.Category
	for _, c := range m.categories {
		if m.visibleTo(ownerID, c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) GetVisible(_ context.Context, ownerID, id string) (*categoryDatamodel.Category, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	c, ok := m.categories[id]
	if !ok || !m.visibleTo(ownerID, c) {
		return nil, category.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *MockRepository) Create(_ context.Context, c *categoryDatamodel.Category) error {
	if m.shouldFail {
		return m.failError
	}
	c.ID = "cat-new"
	m.categories[c.ID] = c
	return nil
}

func (m *MockRepository) Update(_ context.Context, c *categoryDatamodel.Category) error {
	m.categories[c.ID] = c
	return nil
}

func (m *MockRepository) Usage(_ context.Context, _, id string) (category.Usage, error) {
	return m.usage[id], nil
}

func (m *MockRepository) DeleteCascade(_ context.Context, _, id string) (category.Usage, error) {
	m.deleted = append(m.deleted, id)
	delete(m.categories, id)
	return m.usage[id], nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

func strPtr(s string) *string { return &s }

var _ = Describe("Category Service", func() {
	var (
		mockRepo  *MockRepository
		publisher *capturingPublisher
		service   *category.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		publisher = &capturingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = category.NewService(mockRepo, publisher, logger)
		ctx = internal.ContextWithUserID(context.Background(), "owner-1")

		mockRepo.categories["food"] = &categoryDatamodel.Category{ID: "food", Name: "Food", Emoji: "🍔", IsDefault: true}
		mockRepo.categories["gym"] = &categoryDatamodel.Category{ID: "gym", UserID: strPtr("owner-1"), Name: "Gym"}
		mockRepo.categories["other"] = &categoryDatamodel.Category{ID: "other", UserID: strPtr("owner-2"), Name: "Other"}
	})

	Describe("List", func() {
		It("returns defaults and the owner's categories only", func() {
			categories, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(categories))
			for _, c := range categories {
				names = append(names, c.Name)
			}
			Expect(names).To(ConsistOf("Food", "Gym"))
		})

		It("requires an owner", func() {
			_, err := service.List(context.Background())
			Expect(err).To(MatchError(internal.ErrAuthMissing))
		})

		It("wraps repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))
			_, err := service.List(ctx)
			Expect(internal.IsType(err, internal.ErrorTypeStorage)).To(BeTrue())
		})
	})

	Describe("Names", func() {
		It("maps ids to names", func() {
			names, err := service.Names(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal(map[string]string{"food": "Food", "gym": "Gym"}))
		})
	})

	Describe("Create", func() {
		It("creates an owned category", func() {
			created, err := service.Create(ctx, category.CreateCategoryDTO{Name: "  Pets ", Emoji: "🐶"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Name).To(Equal("Pets"))
			Expect(*created.OwnerID).To(Equal("owner-1"))
			Expect(created.IsDefault).To(BeFalse())
		})

		It("rejects an empty name", func() {
			_, err := service.Create(ctx, category.CreateCategoryDTO{Name: " "})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("renames an owned category", func() {
			updated, err := service.Update(ctx, "gym", category.UpdateCategoryDTO{Name: strPtr("Fitness")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Fitness"))
		})

		It("refuses to modify a default category", func() {
			_, err := service.Update(ctx, "food", category.UpdateCategoryDTO{Name: strPtr("Meals")})
			Expect(err).To(MatchError(category.ErrDefaultReadOnly))
		})

		It("does not reveal other owners' categories", func() {
			_, err := service.Update(ctx, "other", category.UpdateCategoryDTO{Name: strPtr("Mine")})
			Expect(err).To(MatchError(category.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("deletes an unused category without confirmation", func() {
			_, err := service.Delete(ctx, "gym", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.deleted).To(Equal([]string{"gym"}))
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeCategoryDeleted))
		})

		It("asks for confirmation when the category is in use", func() {
			mockRepo.usage["gym"] = category.Usage{Expenses: 3, RecurringExpenses: 1}

			usage, err := service.Delete(ctx, "gym", false)
			Expect(err).To(MatchError(category.ErrInUse))
			Expect(usage.Total()).To(Equal(int64(4)))
			Expect(mockRepo.deleted).To(BeEmpty())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(Equal(usage))
		})

		It("cascades when confirmed", func() {
			mockRepo.usage["gym"] = category.Usage{Expenses: 3, RecurringExpenses: 1, Budgets: 2}

			removed, err := service.Delete(ctx, "gym", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed.Budgets).To(Equal(int64(2)))
			Expect(mockRepo.deleted).To(Equal([]string{"gym"}))
		})

		It("refuses to delete a default category", func() {
			_, err := service.Delete(ctx, "food", true)
			Expect(err).To(MatchError(category.ErrDefaultReadOnly))
		})
	})
})
