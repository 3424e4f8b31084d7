package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/javaniecampbell/storymap/internal/model"
)

// RecentProjects is how many projects the dashboard lists.
const RecentProjects = 5

type DashboardService struct {
	projects ProjectStore
	stories  StoryStore
	personas PersonaStore
}

func NewDashboardService(stores Stores) *DashboardService {
	return &DashboardService{
		projects: stores.Projects,
		stories:  stores.Stories,
		personas: stores.Personas,
	}
}

// Get gathers the recent project summaries and the user's totals
// concurrently.
func (s *DashboardService) Get(ctx context.Context, userID string) (*model.Dashboard, error) {
	var d model.Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summaries, err := s.projects.Summaries(ctx, userID, RecentProjects)
		if err != nil {
			return err
		}
		d.ProjectSummaries = summaries
		return nil
	})
	g.Go(func() error {
		n, err := s.projects.Count(ctx, userID)
		d.TotalProjects = n
		return err
	})
	g.Go(func() error {
		n, err := s.stories.CountByUser(ctx, userID)
		d.TotalStories = n
		return err
	})
	g.Go(func() error {
		n, err := s.personas.CountByUser(ctx, userID)
		d.TotalPersonas = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.ProjectSummaries == nil {
		d.ProjectSummaries = []model.ProjectSummary{}
	}
	return &d, nil
}
