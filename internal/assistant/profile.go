package assistant

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Profile is the persona a conversation runs with: what it says first, what
// it tells the model, how replies are tagged and what it says when the remote
// call fails.
type Profile struct {
	Name           string   `yaml:"name"`
	Title          string   `yaml:"title"`
	Greeting       string   `yaml:"greeting"`
	Preamble       string   `yaml:"preamble"`
	DefaultReply   string   `yaml:"default_reply"`
	FailureReply   string   `yaml:"failure_reply"`
	WarningMarkers []string `yaml:"warning_markers"`
	SuccessMarkers []string `yaml:"success_markers"`
	Placeholder    string   `yaml:"placeholder"`
	QuickPrompts   []string `yaml:"quick_prompts"`
}

const (
	ProfileWidget     = "widget"
	ProfileFraudAlert = "fraud-alert"
)

const (
	defaultReply = "I'm unable to respond right now. Please try again."
	failureReply = "I'm having trouble connecting right now. Please try again in a moment."
)

var builtinProfiles = map[string]Profile{
	ProfileWidget: {
		Name:     ProfileWidget,
		Title:    "SafeFlow Assistant",
		Greeting: "Hi! I'm SafeFlow's AI assistant. I can help with transaction analysis, fraud detection, and financial security questions. How can I help you today?",
		Preamble: `You are SafeFlow's AI assistant, specialized in UPI transactions and financial security.

Your role:
- Help with transaction categorization and analysis
- Provide financial security advice
- Answer questions about UPI fraud detection
- Assist with SafeFlow app features

Guidelines:
- Be helpful, friendly, and concise
- Focus on financial technology and security
- Keep responses under 100 words
- Use 💡 for tips, ⚠️ for warnings, ✅ for confirmations`,
		DefaultReply: defaultReply,
		FailureReply: failureReply,
		Placeholder:  "Ask me anything...",
	},
	ProfileFraudAlert: {
		Name:     ProfileFraudAlert,
		Title:    "Fraud Alert Agent",
		Greeting: "Hello! I'm your SafePay AI Fraud Alert Agent. I can help analyze your transactions for potential fraud. Share a transaction detail or ask me about suspicious activities.",
		Preamble: `You are SafePay AI's Fraud Alert Agent, helping users judge whether UPI transactions look fraudulent.

Your role:
- Review transaction details the user shares and point out red flags
- Explain common UPI scams (fake collect requests, OTP sharing, spoofed merchants)
- Give concrete steps to verify a merchant or payment request

Guidelines:
- Be calm, direct, and practical
- Never ask for OTPs, PINs, or full account numbers
- Keep responses under 150 words
- Use 💡 for tips, ⚠️ for warnings, ✅ for confirmations`,
		DefaultReply:   defaultReply,
		FailureReply:   failureReply,
		WarningMarkers: []string{"suspicious"},
		Placeholder:    "Describe a transaction or ask about fraud detection...",
		QuickPrompts: []string{
			"Is this transaction suspicious: ₹5000 to unknown merchant?",
			"How can I stay safe from UPI fraud?",
			"What are common fraud patterns in UPI?",
		},
	},
}

// BuiltinProfile returns a copy of a built-in profile.
func BuiltinProfile(name string) (Profile, bool) {
	p, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, false
	}
	p.WarningMarkers = append([]string(nil), p.WarningMarkers...)
	p.SuccessMarkers = append([]string(nil), p.SuccessMarkers...)
	p.QuickPrompts = append([]string(nil), p.QuickPrompts...)
	return p, true
}

// Classifier builds the classifier for this profile's marker sets.
func (p Profile) Classifier() Classifier {
	return NewClassifier(p.WarningMarkers, p.SuccessMarkers)
}

// withDefaults fills blank texts from the widget profile.
func (p Profile) withDefaults() Profile {
	base := builtinProfiles[ProfileWidget]
	if strings.TrimSpace(p.Title) == "" {
		p.Title = p.Name
	}
	if strings.TrimSpace(p.Greeting) == "" {
		p.Greeting = base.Greeting
	}
	if strings.TrimSpace(p.Preamble) == "" {
		p.Preamble = base.Preamble
	}
	if strings.TrimSpace(p.DefaultReply) == "" {
		p.DefaultReply = base.DefaultReply
	}
	if strings.TrimSpace(p.FailureReply) == "" {
		p.FailureReply = base.FailureReply
	}
	if strings.TrimSpace(p.Placeholder) == "" {
		p.Placeholder = base.Placeholder
	}
	return p
}

// Catalog is the set of profiles a process can start conversations with.
type Catalog struct {
	profiles map[string]Profile
}

// NewCatalog returns a catalog holding the built-in profiles.
func NewCatalog() *Catalog {
	c := &Catalog{profiles: make(map[string]Profile, len(builtinProfiles))}
	for name := range builtinProfiles {
		p, _ := BuiltinProfile(name)
		c.profiles[name] = p
	}
	return c
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadFile merges profiles from a YAML file, overriding built-ins by name.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read profiles %s", path)
	}
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return errors.Wrapf(err, "parse profiles %s", path)
	}
	for i, p := range pf.Profiles {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return errors.Errorf("profiles %s: entry %d has no name", path, i)
		}
		c.profiles[p.Name] = p.withDefaults()
	}
	return nil
}

// Get looks a profile up by name.
func (c *Catalog) Get(name string) (Profile, error) {
	p, ok := c.profiles[strings.TrimSpace(name)]
	if !ok {
		return Profile{}, errors.Errorf("unknown profile %q (have %s)", name, strings.Join(c.Names(), ", "))
	}
	return p, nil
}

// Names lists profile names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
