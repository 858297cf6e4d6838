package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

func sha(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestPlatformAsset(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"darwin", "arm64", "autismart_Darwin_all.tar.gz"},
		{"darwin", "amd64", "autismart_Darwin_all.tar.gz"},
		{"linux", "amd64", "autismart_Linux_x86_64.tar.gz"},
		{"linux", "386", "autismart_Linux_i386.tar.gz"},
		{"windows", "arm64", "autismart_Windows_arm64.zip"},
		{"plan9", "amd64", ""},
		{"linux", "riscv64", ""},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := platformAsset(tt.goos, tt.goarch)
			if tt.want == "" {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupChecksum(t *testing.T) {
	list := []byte("ABC123  autismart_Linux_x86_64.tar.gz\nnoise\n\n a b c \ndef  autismart_Darwin_all.tar.gz\n")

	got, ok := lookupChecksum(list, "autismart_Linux_x86_64.tar.gz")
	assert.True(t, ok)
	assert.Equal(t, "abc123", got)

	_, ok = lookupChecksum(list, "autismart_Windows_arm64.zip")
	assert.False(t, ok)
	_, ok = lookupChecksum(nil, "x")
	assert.False(t, ok)
}

func TestVerifySHA256(t *testing.T) {
	data := []byte("observation")
	assert.NoError(t, verifySHA256(data, sha(data)))
	assert.ErrorIs(t, verifySHA256(data, zeroHash), ErrChecksum)
}

func TestUnpack(t *testing.T) {
	content := []byte("#!/bin/sh\necho autismart")

	got, err := unpack(buildTarGz(t, "dist/autismart", content), "autismart_Linux_x86_64.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	got, err = unpack(buildZip(t, "autismart.exe", content), "autismart_Windows_x86_64.zip")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = unpack(buildTarGz(t, "README.md", content), "autismart_Linux_x86_64.tar.gz")
	require.ErrorContains(t, err, "not found")
}

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "autismart")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o750))

	require.NoError(t, replaceFile(target, []byte("fresh build")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh build"), got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staged file left behind")
}

func TestReplaceFileMissingTarget(t *testing.T) {
	err := replaceFile(filepath.Join(t.TempDir(), "absent"), []byte("x"))
	assert.Error(t, err)
}

// releaseServer serves the GitHub endpoints for owner/name at tag. A nil
// archive answers the asset download with 404.
func releaseServer(t *testing.T, tag, asset string, archive []byte, checksum string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		download := "/owner/name/releases/download/" + tag + "/"
		switch r.URL.Path {
		case "/repos/owner/name/releases/latest":
			fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tag, tag)
		case download + asset:
			if archive == nil {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(archive)
		case download + checksumsFile:
			fmt.Fprintf(w, "%s  %s\n", checksum, asset)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	srv := releaseServer(t, "v1.4.0", "", nil, "")
	checker := NewChecker(WithRepo("owner/name"), WithBaseURL(srv.URL))

	tests := []struct {
		current string
		want    bool
	}{
		{"v1.3.9", true},
		{"1.3.9", true},
		{"v1.4.0", false},
		{"v2.0.0", false},
		{"(devel)", false},
	}
	for _, tt := range tests {
		res, err := checker.Check(context.Background(), &CheckInput{Version: tt.current})
		require.NoError(t, err)
		assert.Equal(t, "v1.4.0", res.LatestVersion)
		assert.Equal(t, tt.want, res.UpdateAvailable, "current %s", tt.current)
	}
}

func TestCheckRejectsBadTag(t *testing.T) {
	srv := releaseServer(t, "latest", "", nil, "")
	_, err := NewChecker(WithRepo("owner/name"), WithBaseURL(srv.URL)).
		Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	asset, err := platformAsset(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no release asset for this platform: %v", err)
	}
	content := []byte("autismart v2")
	archive := buildTarGz(t, "autismart", content)
	if filepath.Ext(asset) == ".zip" {
		archive = buildZip(t, "autismart.exe", content)
	}

	newChecker := func(srv *httptest.Server, opts ...Option) *Checker {
		return NewChecker(append([]Option{
			WithRepo("owner/name"), WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL),
		}, opts...)...)
	}
	noProgress := func(UpdateProgress) {}

	t.Run("installs latest", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "autismart")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))
		checker := newChecker(releaseServer(t, "v2.0.0", asset, archive, sha(archive)),
			withExecPath(func() (string, error) { return execPath, nil }))

		var stages []string
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)
	})

	t.Run("explicit target skips check", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "autismart")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))
		checker := newChecker(releaseServer(t, "v2.0.0", asset, archive, sha(archive)),
			withExecPath(func() (string, error) { return execPath, nil }))

		var stages []string
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v3.0.0", TargetVersion: "v2.0.0"},
			func(p UpdateProgress) { stages = append(stages, p.Stage) })
		require.NoError(t, err)
		assert.Equal(t, "download", stages[0])
	})

	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, noProgress)
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		checker := newChecker(releaseServer(t, "v1.0.0", asset, archive, sha(archive)))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, noProgress)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		checker := newChecker(releaseServer(t, "v2.0.0", asset, archive, zeroHash))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, noProgress)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("download failure", func(t *testing.T) {
		checker := newChecker(releaseServer(t, "v2.0.0", asset, nil, sha(archive)))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, noProgress)
		require.ErrorContains(t, err, "download archive")
	})
}

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: name, Size: int64(len(content)), Mode: 0o755, Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
