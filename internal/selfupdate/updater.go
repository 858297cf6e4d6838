package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	binaryName    = "autismart"
	checksumsFile = "checksums.txt"

	// maxDownload caps a release asset.
	maxDownload = 200 << 20
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

// UpdateInput selects the version to move from and, optionally, to.
type UpdateInput struct {
	CurrentVersion string
	// TargetVersion is a release tag; empty means the latest release.
	TargetVersion string
}

// UpdateProgress reports one stage: check, download, verify, extract,
// apply, done.
type UpdateProgress struct {
	Stage   string
	Message string
}

// Update installs a release over the running binary after verifying the
// archive against the release's checksums.txt.
func (c *Checker) Update(ctx context.Context, in *UpdateInput, progress func(UpdateProgress)) error {
	if isDevBuild(in.CurrentVersion) {
		return ErrDevBuild
	}
	report := func(stage, format string, args ...any) {
		progress(UpdateProgress{Stage: stage, Message: fmt.Sprintf(format, args...)})
	}

	tag := in.TargetVersion
	if tag == "" {
		report("check", "Checking for the latest release...")
		res, err := c.Check(ctx, &CheckInput{Version: in.CurrentVersion})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !res.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = res.LatestVersion
	}

	asset, err := platformAsset(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}

	report("download", "Downloading %s for %s/%s...", tag, runtime.GOOS, runtime.GOARCH)
	archive, err := c.get(ctx, c.assetURL(tag, asset))
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report("verify", "Verifying checksum...")
	sums, err := c.get(ctx, c.assetURL(tag, checksumsFile))
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := lookupChecksum(sums, asset)
	if !ok {
		return fmt.Errorf("%s has no entry for %s", checksumsFile, asset)
	}
	if err := verifySHA256(archive, want); err != nil {
		return err
	}

	report("extract", "Extracting %s...", binaryName)
	bin, err := unpack(archive, asset)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report("apply", "Replacing the installed binary...")
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if err := replaceFile(target, bin); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	report("done", "Updated to %s", tag)
	return nil
}

func isDevBuild(v string) bool {
	return v == "" || v == "(devel)" || v == "dev"
}

func (c *Checker) assetURL(tag, name string) string {
	return strings.TrimRight(c.downloadBaseURL, "/") + "/" +
		path.Join(c.owner, c.repo, "releases", "download", tag, name)
}

// releaseArch maps GOARCH to the names used in release archives.
var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

// platformAsset names the release archive for a platform. macOS ships a
// single universal archive.
func platformAsset(goos, goarch string) (string, error) {
	if goos == "darwin" {
		return binaryName + "_Darwin_all.tar.gz", nil
	}
	ext := map[string]string{"linux": ".tar.gz", "windows": ".zip"}[goos]
	if ext == "" {
		return "", fmt.Errorf("no release builds for %s", goos)
	}
	arch, ok := releaseArch[goarch]
	if !ok {
		return "", fmt.Errorf("no release builds for %s/%s", goos, goarch)
	}
	title := strings.ToUpper(goos[:1]) + goos[1:]
	return binaryName + "_" + title + "_" + arch + ext, nil
}

func (c *Checker) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxDownload {
		return nil, fmt.Errorf("GET %s: larger than %d bytes", url, maxDownload)
	}
	return body, nil
}

// lookupChecksum finds asset in a goreleaser-style "<sha256>  <name>" list.
func lookupChecksum(list []byte, asset string) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(list))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 2 && fields[1] == asset {
			return strings.ToLower(fields[0]), true
		}
	}
	return "", false
}

func verifySHA256(data []byte, wantHex string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != wantHex {
		return fmt.Errorf("%w: want %s, got %s", ErrChecksum, wantHex, got)
	}
	return nil
}

// unpack returns the executable from a .tar.gz or .zip release archive.
func unpack(archive []byte, asset string) ([]byte, error) {
	if strings.HasSuffix(asset, ".zip") {
		return unpackZip(archive, binaryName+".exe")
	}
	return unpackTarGz(archive, binaryName)
}

func unpackTarGz(archive []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%s not found in archive", name)
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == name {
			return io.ReadAll(io.LimitReader(tr, maxDownload))
		}
	}
}

func unpackZip(archive []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(io.LimitReader(rc, maxDownload))
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// replaceFile atomically swaps target for data, keeping target's mode. The
// staged copy is re-read and hashed before the rename.
func replaceFile(target string, data []byte) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-update-*")
	if err != nil {
		return fmt.Errorf("stage update: %w", err)
	}
	staged := tmp.Name()
	defer func() { _ = os.Remove(staged) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write staged binary: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync staged binary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(staged, info.Mode().Perm()); err != nil {
		return err
	}

	written, err := os.ReadFile(staged)
	if err != nil {
		return err
	}
	if sha256.Sum256(written) != sha256.Sum256(data) {
		return fmt.Errorf("%w: staged binary changed after write", ErrChecksum)
	}
	return os.Rename(staged, target)
}
