package marauder

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// IDPlaceholder is replaced with the identifier in Profile.TargetSelector.
const IDPlaceholder = "{id}"

const (
	DEF_URL             = "https://obd-memorial.ru/html/search.htm?f=галочкин&n=иван&s=михайлович"
	DEF_PROXY_SELECTOR  = "//span[@class='searchResultDownload']"
	DEF_TARGET_SELECTOR = "//span[@id_download='{id}']"
	DEF_ATTRIBUTE       = "id_download"
	DEF_LOAD_TIMEOUT    = 30 * time.Second
	DEF_SETTLE_DELAY    = 5 * time.Second
	DEF_RESTART_BUDGET  = 10
)

// DefaultExtensions lists the file extensions probed in the staging and
// destination directories, in priority order.
var DefaultExtensions = []string{"jpg", "JPG", "jpeg", "JPEG", "png", "PNG", "bmp", "BMP"}

// Profile describes the target site and the timings used against it.
type Profile struct {
	// URL is the page that hosts the proxy element.
	URL string `yaml:"url"`
	// ProxySelector locates the element whose attribute is rewritten before
	// every download.
	ProxySelector string `yaml:"proxy_selector"`
	// TargetSelector locates the proxy element once it references an
	// identifier. It must contain IDPlaceholder.
	TargetSelector string `yaml:"target_selector"`
	// Attribute is the proxy element attribute that carries the identifier.
	Attribute  string   `yaml:"attribute"`
	Extensions []string `yaml:"extensions"`

	LoadTimeout   time.Duration `yaml:"load_timeout"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	RestartBudget int           `yaml:"restart_budget"`
}

// DefaultProfile returns the built-in site profile.
func DefaultProfile() Profile {
	exts := make([]string, len(DefaultExtensions))
	copy(exts, DefaultExtensions)
	return Profile{
		URL:            DEF_URL,
		ProxySelector:  DEF_PROXY_SELECTOR,
		TargetSelector: DEF_TARGET_SELECTOR,
		Attribute:      DEF_ATTRIBUTE,
		Extensions:     exts,
		LoadTimeout:    DEF_LOAD_TIMEOUT,
		SettleDelay:    DEF_SETTLE_DELAY,
		RestartBudget:  DEF_RESTART_BUDGET,
	}
}

// LoadProfile reads a YAML profile from path. Keys absent from the file keep
// their default values; unknown keys are rejected.
func LoadProfile(fs afero.Fs, path string) (Profile, error) {
	p := DefaultProfile()
	f, err := fs.Open(path)
	if err != nil {
		return p, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, path, err)
	}
	return p, p.Validate()
}

// Validate reports the first problem that would make the profile unusable.
func (p Profile) Validate() error {
	switch {
	case p.URL == "":
		return fmt.Errorf("%w: url is empty", ErrInvalidProfile)
	case p.ProxySelector == "":
		return fmt.Errorf("%w: proxy_selector is empty", ErrInvalidProfile)
	case !strings.Contains(p.TargetSelector, IDPlaceholder):
		return fmt.Errorf("%w: target_selector must contain %s", ErrInvalidProfile, IDPlaceholder)
	case p.Attribute == "":
		return fmt.Errorf("%w: attribute is empty", ErrInvalidProfile)
	case len(p.Extensions) == 0:
		return fmt.Errorf("%w: extensions are empty", ErrInvalidProfile)
	case p.LoadTimeout <= 0:
		return fmt.Errorf("%w: load_timeout must be positive", ErrInvalidProfile)
	case p.SettleDelay < 0:
		return fmt.Errorf("%w: settle_delay must not be negative", ErrInvalidProfile)
	case p.RestartBudget < 0:
		return fmt.Errorf("%w: restart_budget must not be negative", ErrInvalidProfile)
	}
	for _, ext := range p.Extensions {
		if ext == "" || strings.ContainsAny(ext, `./\`) {
			return fmt.Errorf("%w: bad extension %q", ErrInvalidProfile, ext)
		}
	}
	return nil
}

// TargetFor returns the selector matching the proxy element once it
// references id.
func (p Profile) TargetFor(id int64) string {
	return strings.ReplaceAll(p.TargetSelector, IDPlaceholder, strconv.FormatInt(id, 10))
}
