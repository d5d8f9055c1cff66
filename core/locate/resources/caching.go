package resources

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/schuko"
)

// cacheDir returns a folder below the user's cache directory, creating it
// if necessary. The folder is named after configuration key 'app-key',
// followed by sub.
func cacheDir(conf schuko.Configuration, sub ...string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", core.WrapError(err, core.EMISSING, "no user cache directory")
	}
	app := conf.GetString("app-key")
	if app == "" {
		app = "kernstyle"
	}
	dir := filepath.Join(append([]string{base, app}, sub...)...)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", core.WrapError(err, core.EINVALID, "cannot create cache directory %s", dir)
	}
	return dir, nil
}

var downloadClient = &http.Client{Timeout: 2 * time.Minute}

// download fetches url into file dst. Data goes to a temporary file next
// to dst first, which is renamed when complete; dst never holds a partial
// download.
func download(dst, url string) error {
	resp, err := downloadClient.Get(url)
	if err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot fetch %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.Error(core.ECONNECTION, "fetching %s: %s", url, resp.Status)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot store %s", dst)
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return core.WrapError(err, core.ECONNECTION, "download of %s incomplete", url)
	}
	return os.Rename(tmp.Name(), dst)
}
