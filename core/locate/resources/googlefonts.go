package resources

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
)

// GoogleFontInfo describes a font family of the Google Fonts service.
type GoogleFontInfo struct {
	Family   string            `json:"family"`
	Version  string            `json:"version"`
	Variants []string          `json:"variants"`
	Subsets  []string          `json:"subsets"`
	Files    map[string]string `json:"files"`
}

type googleFontsList struct {
	Items []GoogleFontInfo `json:"items"`
}

var loadGoogleFontsDir sync.Once
var googleFontsDirectory googleFontsList
var googleFontsLoadError error
var googleFontsAPI string = `https://www.googleapis.com/webfonts/v1/webfonts?`

func setupGoogleFontsDirectory(conf schuko.Configuration) error {
	loadGoogleFontsDir.Do(func() {
		apikey := conf.GetString("google-api-key")
		if apikey == "" {
			apikey = os.Getenv("GOOGLE_API_KEY")
		}
		if apikey == "" {
			err := errors.New("Google API key not set")
			tracer().Errorf("%v", err)
			googleFontsLoadError = core.WrapError(err, core.EMISSING,
				`Google Fonts API-key must be set in configuration or as GOOGLE_API_KEY in environment;
      please refer to https://developers.google.com/fonts/docs/developer_api`)
			return
		}
		values := url.Values{
			"sort": []string{"alpha"},
			"key":  []string{apikey},
		}
		resp, err := http.Get(googleFontsAPI + values.Encode())
		if err != nil {
			tracer().Errorf("Google Fonts API request not OK: %s", err.Error())
			googleFontsLoadError = core.WrapError(err, core.ECONNECTION,
				"could not get fonts-directory from Google font service")
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			tracer().Errorf("Google Fonts API request not OK: %v", resp.Status)
			err := core.Error(core.ECONNECTION, "response: %v", resp.Status)
			googleFontsLoadError = core.WrapError(err, core.ECONNECTION,
				"could not get fonts-directory from Google font service")
			return
		}
		dec := json.NewDecoder(resp.Body)
		err = dec.Decode(&googleFontsDirectory)
		if err != nil {
			googleFontsLoadError = core.WrapError(err, core.EINVALID,
				"could not decode fonts-list from Google font service")
		}
	})
	return googleFontsLoadError
}

// ---------------------------------------------------------------------------

// ListGoogleFonts produces a listing of available fonts from the Google webfont
// service, with font-family names matching a given pattern.
//
// If not aleady done, the list of fonts will be downloaded from Google.
func ListGoogleFonts(conf schuko.Configuration, pattern string) {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	if err := setupGoogleFontsDirectory(conf); err != nil {
		tracer().Errorf("%s", core.UserMessage(err))
	} else {
		listGoogleFonts(googleFontsDirectory, pattern)
	}
	tracer().SetTraceLevel(level)
}

func listGoogleFonts(list googleFontsList, pattern string) {
	r, err := regexp.Compile(pattern)
	if err != nil {
		tracer().Errorf("cannot list Google fonts: invalid pattern: %v", err)
		return
	}
	tracer().Infof("%d fonts in list", len(list.Items))
	tracer().Infof("======================================")
	for i, finfo := range list.Items {
		if r.MatchString(finfo.Family) {
			tracer().Infof("[%4d] %-20s: %s", i, finfo.Family, finfo.Version)
			tracer().Infof("       subsets: %v", finfo.Subsets)
			for k, v := range finfo.Files {
				tracer().Infof("       - %-18s: %s", k, path.Ext(v))
			}
		}
	}
}

// FindGoogleFont scans the Google Fonts directory for families matching
// pattern which offer a variant of the given style and weight.
func FindGoogleFont(conf schuko.Configuration, pattern string, style xfont.Style,
	weight xfont.Weight) ([]GoogleFontInfo, error) {
	//
	if err := setupGoogleFontsDirectory(conf); err != nil {
		return nil, err
	}
	return findGoogleFont(googleFontsDirectory, pattern, style, weight)
}

func findGoogleFont(list googleFontsList, pattern string, style xfont.Style,
	weight xfont.Weight) ([]GoogleFontInfo, error) {
	//
	var fonts []GoogleFontInfo
	for _, fi := range list.Items {
		desc := googleDescriptors([]GoogleFontInfo{fi})
		_, variant, confidence := fontregistry.ClosestMatch(desc, pattern, style, weight)
		if confidence > fontregistry.LowConfidence {
			tracer().Debugf("Google font %s|%s matches with confidence %d", fi.Family, variant, confidence)
			fonts = append(fonts, fi)
		}
	}
	if len(fonts) == 0 {
		return nil, core.Error(core.EMISSING, "no Google font matching %q", pattern)
	}
	return fonts, nil
}

func googleDescriptors(list []GoogleFontInfo) []fontregistry.Descriptor {
	descs := make([]fontregistry.Descriptor, len(list))
	for i, fi := range list {
		descs[i] = fontregistry.Descriptor{Family: fi.Family, Variants: fi.Variants}
	}
	return descs
}

// CacheGoogleFont downloads a font variant to the user's cache directory,
// unless it is already present there. It returns the path of the cached
// font file.
func CacheGoogleFont(conf schuko.Configuration, fi GoogleFontInfo, variant string) (string, error) {
	fileurl, ok := fi.Files[variant]
	if !ok {
		return "", core.Error(core.EMISSING, "font %s has no variant %q", fi.Family, variant)
	}
	cachedir, err := cacheDir(conf, "fonts")
	if err != nil {
		return "", core.WrapError(err, core.EMISSING, "cannot create cache directory")
	}
	ext := path.Ext(fileurl)
	if ext == "" {
		ext = ".ttf"
	}
	name := strings.ToLower(strings.ReplaceAll(fi.Family, " ", "_")) + "-" + variant + ext
	fpath := path.Join(cachedir, name)
	if _, err := os.Stat(fpath); err == nil {
		tracer().Debugf("font %s found in cache", name)
		return fpath, nil
	}
	tracer().Infof("downloading Google font %s|%s", fi.Family, variant)
	if err := download(fpath, fileurl); err != nil {
		return "", core.WrapError(err, core.ECONNECTION, "cannot download font %s", fi.Family)
	}
	return fpath, nil
}
