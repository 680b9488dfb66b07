package answering

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptPair struct {
	system string
	user   *template.Template
}

type Prompts struct {
	answer    promptPair
	summarize promptPair
	samples   []string
}

func LoadPrompts() (*Prompts, error) {
	return ParsePrompts(promptsYAML)
}

func ParsePrompts(data []byte) (*Prompts, error) {
	raw := struct {
		Answer struct {
			System string `yaml:"system"`
			User   string `yaml:"user"`
		} `yaml:"answer"`
		Summarize struct {
			System string `yaml:"system"`
			User   string `yaml:"user"`
		} `yaml:"summarize"`
		SamplePrompts []string `yaml:"sample_prompts"`
	}{}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing prompts: %w", err)
	}

	answer, err := template.New("answer").Option("missingkey=error").Parse(raw.Answer.User)
	if err != nil {
		return nil, fmt.Errorf("error parsing answer prompt: %w", err)
	}
	summarize, err := template.New("summarize").Option("missingkey=error").Parse(raw.Summarize.User)
	if err != nil {
		return nil, fmt.Errorf("error parsing summarize prompt: %w", err)
	}

	return &Prompts{
		answer:    promptPair{system: raw.Answer.System, user: answer},
		summarize: promptPair{system: raw.Summarize.System, user: summarize},
		samples:   raw.SamplePrompts,
	}, nil
}

func (p *Prompts) Answer(req AnswerRequest) (string, string, error) {
	user, err := render(p.answer.user, req)
	return p.answer.system, user, err
}

func (p *Prompts) Summarize(req SummarizeRequest) (string, string, error) {
	user, err := render(p.summarize.user, req)
	return p.summarize.system, user, err
}

// Samples are the suggested first questions for an empty conversation.
func (p *Prompts) Samples() []string {
	return append([]string(nil), p.samples...)
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("error rendering %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
