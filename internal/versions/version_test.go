package versions

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildVersionInfo(t *testing.T) {
	t.Parallel()

	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-03-01T10:30:00Z"},
	}

	tests := []struct {
		name     string
		version  string
		commit   string
		built    string
		settings []debug.BuildSetting
		want     VersionInfo
	}{
		{
			name:     "release build keeps ldflags values",
			version:  "v1.2.0",
			commit:   "cafebabe",
			built:    "2026-02-01T00:00:00Z",
			settings: vcs,
			want:     VersionInfo{Version: "v1.2.0", Commit: "cafebabe", BuildDate: "2026-02-01 00:00:00 UTC"},
		},
		{
			name:     "dev build uses vcs data",
			version:  "dev",
			commit:   unknown,
			built:    unknown,
			settings: vcs,
			want:     VersionInfo{Version: "build-01234567", Commit: "0123456789abcdef", BuildDate: "2026-03-01 10:30:00 UTC"},
		},
		{
			name:    "dev build without vcs data",
			version: "dev",
			commit:  unknown,
			built:   unknown,
			want:    VersionInfo{Version: "dev", Commit: unknown, BuildDate: unknown},
		},
		{
			name:    "unparseable build date is kept",
			version: "v1.0.0",
			commit:  "abc",
			built:   "yesterday",
			want:    VersionInfo{Version: "v1.0.0", Commit: "abc", BuildDate: "yesterday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildVersionInfo(tt.version, tt.commit, tt.built, tt.settings)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}
