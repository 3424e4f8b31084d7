package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoryType(t *testing.T) {
	for _, valid := range []string{"EPIC", "FEATURE", "STORY"} {
		got, err := ParseStoryType(valid)
		require.NoError(t, err)
		assert.Equal(t, StoryType(valid), got)
	}

	for _, invalid := range []string{"", "story", "TASK", " EPIC"} {
		_, err := ParseStoryType(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestProjectSummaryCount(t *testing.T) {
	var s ProjectSummary
	s.Count(StoryTypeEpic)
	s.Count(StoryTypeStory)
	s.Count(StoryTypeStory)

	assert.Equal(t, ProjectSummary{TotalStories: 3, EpicCount: 1, StoryCount: 2}, s)
}
