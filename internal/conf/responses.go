package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Responses is the catalog of user-facing reply templates. A `*` inside a
// template is the substitution slot for a community display name.
type Responses struct {
	BlacklistSub     string `yaml:"blacklist_sub"`
	WhitelistSub     string `yaml:"whitelist_sub"`
	BlacklistUser    string `yaml:"blacklist_user"`
	WhitelistUser    string `yaml:"whitelist_user"`
	Suggestion       string `yaml:"suggestion"`
	InvalidSubreddit string `yaml:"invalid_subreddit"`
	InvalidCommand   string `yaml:"invalid_command"`
	Unauthorised     string `yaml:"unauthorised"`

	// Correction is loaded from an external text resource, never inline.
	Correction string `yaml:"-"`
}

// Render substitutes a community name into a template's `*` slot. Templates
// without a slot are returned verbatim.
func Render(template, name string) string {
	return strings.Replace(template, "*", name, 1)
}

// LoadResponses loads the response catalog from YAML and the correction body
// from its own file. Missing catalog entries fall back to the defaults.
func LoadResponses(configPath, correctionPath string) (*Responses, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/responses.yaml",
			"./configs/responses.yaml",
			"/etc/paddybot/responses.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "responses.yaml"))
		}
	}

	responses := DefaultResponses()

	var data []byte
	var err error
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}

	if data != nil {
		if err := yaml.Unmarshal(data, responses); err != nil {
			return nil, fmt.Errorf("failed to parse responses.yaml: %w", err)
		}
		responses.fillDefaults()
	}

	correction, err := loadCorrectionText(correctionPath)
	if err != nil {
		return nil, err
	}
	responses.Correction = correction

	return responses, nil
}

func loadCorrectionText(path string) (string, error) {
	paths := []string{path}
	if path == "" {
		paths = []string{
			"configs/correction_text.md",
			"./configs/correction_text.md",
			"correction_text.md",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "correction_text.md"))
		}
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		if data, err := os.ReadFile(p); err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("correction text not found (looked in %v)", paths)
}

// DefaultResponses returns the built-in catalog.
func DefaultResponses() *Responses {
	return &Responses{
		BlacklistSub:     "Thank you. * has been blacklisted and I will no longer reply in this subreddit.",
		WhitelistSub:     "Thank you, I will be glad to start replying in *",
		BlacklistUser:    "Thank you. You have been blacklisted and I will no longer reply to your posts or comments",
		WhitelistUser:    "Thank you, I will be glad to start replying to your posts and comments",
		Suggestion:       "Thank you for your suggestion. I have logged it for review.",
		InvalidSubreddit: "Thank you for your message however, the subreddit you mentioned (*) does not appear to be a valid subreddit",
		InvalidCommand:   "I am a bot and unfortunately could not decipher your subject. Please see my profile for a guide on how to message me",
		Unauthorised:     "I understood your request however, it does not appear you are a moderator of *",
	}
}

// fillDefaults fills in default values for empty fields
func (r *Responses) fillDefaults() {
	defaults := DefaultResponses()

	if r.BlacklistSub == "" {
		r.BlacklistSub = defaults.BlacklistSub
	}
	if r.WhitelistSub == "" {
		r.WhitelistSub = defaults.WhitelistSub
	}
	if r.BlacklistUser == "" {
		r.BlacklistUser = defaults.BlacklistUser
	}
	if r.WhitelistUser == "" {
		r.WhitelistUser = defaults.WhitelistUser
	}
	if r.Suggestion == "" {
		r.Suggestion = defaults.Suggestion
	}
	if r.InvalidSubreddit == "" {
		r.InvalidSubreddit = defaults.InvalidSubreddit
	}
	if r.InvalidCommand == "" {
		r.InvalidCommand = defaults.InvalidCommand
	}
	if r.Unauthorised == "" {
		r.Unauthorised = defaults.Unauthorised
	}
}
