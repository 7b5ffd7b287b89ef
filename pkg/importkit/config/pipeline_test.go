package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/importkit/pkg/importkit/config"
)

const pipelineYAML = `name: blog
stages:
  - id: users
    source:
      path: data/users.csv
    destination:
      type: memory
  - id: posts
    label: Blog posts
    depends_on: [users]
    source:
      path: data/posts.jsonl.gz
      format: jsonl
    destination:
      type: jsonl
      path: out/posts.jsonl
    mapping:
      post_title: title
    required: [title]
    rate_limit: 50
    burst: 5
    max_failures: 3
    dry_run: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPipeline(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		dir := t.TempDir()
		p, err := config.LoadPipeline(writeFile(t, dir, "pipeline.yaml", pipelineYAML))
		require.NoError(t, err)

		assert.Equal(t, "blog", p.Name)
		require.Len(t, p.Stages, 2)

		users := p.Stages[0]
		assert.Equal(t, "users", users.ID)
		assert.Equal(t, filepath.Join(dir, "data", "users.csv"), users.Source.Path)
		assert.Equal(t, config.DestinationMemory, users.Destination.Type)

		posts := p.Stages[1]
		assert.Equal(t, "Blog posts", posts.Label)
		assert.Equal(t, []string{"users"}, posts.DependsOn)
		assert.Equal(t, "jsonl", posts.Source.Format)
		assert.Equal(t, filepath.Join(dir, "out", "posts.jsonl"), posts.Destination.Path)
		assert.Equal(t, map[string]string{"post_title": "title"}, posts.Mapping)
		assert.Equal(t, []string{"title"}, posts.Required)
		assert.Equal(t, 50.0, posts.RateLimit)
		assert.Equal(t, 5, posts.Burst)
		assert.Equal(t, 3, posts.MaxFailures)
		assert.True(t, posts.DryRun)
	})

	t.Run("json with absolute paths", func(t *testing.T) {
		dir := t.TempDir()
		content := `{"name": "x", "stages": [{"id": "a", "source": {"path": "/data/a.csv"},
			"destination": {"type": "postgres", "table": "wp.posts"}}]}`
		p, err := config.LoadPipeline(writeFile(t, dir, "pipeline.json", content))
		require.NoError(t, err)

		require.Len(t, p.Stages, 1)
		assert.Equal(t, "/data/a.csv", p.Stages[0].Source.Path)
		assert.Equal(t, "wp.posts", p.Stages[0].Destination.Table)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadPipeline(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid pipeline", func(t *testing.T) {
		dir := t.TempDir()
		_, err := config.LoadPipeline(writeFile(t, dir, "pipeline.yaml", "name: empty\nstages: []\n"))

		var verr *config.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"no stages defined"}, verr.Problems)
	})
}

func TestPipeline_Validate(t *testing.T) {
	valid := func() config.Stage {
		return config.Stage{
			ID:          "posts",
			Source:      config.SourceConfig{Path: "posts.jsonl"},
			Destination: config.DestinationConfig{Type: config.DestinationMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *config.Stage)
		problem string
	}{
		{"missing id", func(s *config.Stage) { s.ID = "" }, "stage 1 has no id"},
		{"self dependency", func(s *config.Stage) { s.DependsOn = []string{"posts"} }, `stage "posts" depends on itself`},
		{"unknown dependency", func(s *config.Stage) { s.DependsOn = []string{"users"} }, `stage "posts" depends on unknown stage "users"`},
		{"missing source", func(s *config.Stage) { s.Source.Path = "" }, `stage "posts" has no source path`},
		{"bad format", func(s *config.Stage) { s.Source.Format = "xml" }, `stage "posts" has unsupported source format "xml"`},
		{"missing destination", func(s *config.Stage) { s.Destination.Type = "" }, `stage "posts" has no destination type`},
		{"bad destination", func(s *config.Stage) { s.Destination.Type = "s3" }, `stage "posts" has unsupported destination type "s3"`},
		{"jsonl without path", func(s *config.Stage) { s.Destination.Type = config.DestinationJSONLines }, `stage "posts": jsonl destination needs a path`},
		{"postgres without table", func(s *config.Stage) { s.Destination.Type = config.DestinationPostgres }, `stage "posts": postgres destination needs a table`},
		{"colliding mapping targets", func(s *config.Stage) {
			s.Mapping = map[string]string{"post_title": "title", "headline": "title", "id": "id"}
		}, `stage "posts" maps "headline", "post_title" to the same field "title"`},
		{"negative rate", func(s *config.Stage) { s.RateLimit = -1 }, `stage "posts" has a negative rate limit`},
		{"negative max failures", func(s *config.Stage) { s.MaxFailures = -1 }, `stage "posts" has a negative max_failures`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			p := config.Pipeline{Stages: []config.Stage{s}}

			var verr *config.ValidationError
			require.ErrorAs(t, p.Validate(), &verr)
			assert.Contains(t, verr.Problems, tt.problem)
		})
	}

	t.Run("duplicate ids", func(t *testing.T) {
		p := config.Pipeline{Stages: []config.Stage{valid(), valid()}}
		var verr *config.ValidationError
		require.ErrorAs(t, p.Validate(), &verr)
		assert.Equal(t, []string{`duplicate stage id "posts"`}, verr.Problems)
	})

	t.Run("valid", func(t *testing.T) {
		p := config.Pipeline{Stages: []config.Stage{valid()}}
		assert.NoError(t, p.Validate())
	})
}
