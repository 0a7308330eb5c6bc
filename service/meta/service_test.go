package meta

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

type sample struct {
	Zone  string `json:"zone" yaml:"zone"`
	Limit int    `json:"limit" yaml:"limit"`
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/meta-" + uuid.New().String()
	t.Setenv("META_ZONE", "nlZone")

	var testCases = []struct {
		description string
		name        string
		content     string
		expect      *sample
		expectErr   bool
	}{
		{
			description: "yaml with env expression",
			name:        "config.yaml",
			content:     "zone: ${env.META_ZONE}\nlimit: 3\n",
			expect:      &sample{Zone: "nlZone", Limit: 3},
		},
		{
			description: "json",
			name:        "config.json",
			content:     `{"zone":"z1","limit":1}`,
			expect:      &sample{Zone: "z1", Limit: 1},
		},
		{
			description: "invalid yaml",
			name:        "broken.yaml",
			content:     "zone: [",
			expectErr:   true,
		},
	}

	srv := New(fs)
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			URL := baseURL + "/" + testCase.name
			assert.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(testCase.content)))
			actual := &sample{}
			err := srv.Load(ctx, URL, actual)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}

	assert.Error(t, srv.Load(ctx, baseURL+"/missing.yaml", &sample{}))
}
