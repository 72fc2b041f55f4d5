package main

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the single YAML description the docs are rendered from
// (docs/templates/towerctl.yaml). Common flags are merged into every
// subcommand before rendering.
type Config struct {
	Subcommands []Subcommand `yaml:"subcommands"`
	Common      struct {
		Flags []Flag `yaml:"flags"`
	} `yaml:"common"`
}

type Subcommand struct {
	ID          string    `yaml:"id"`
	Short       string    `yaml:"short"`
	Description string    `yaml:"description"`
	Usage       string    `yaml:"usage"`
	Flags       []Flag    `yaml:"flags"`
	Examples    []Example `yaml:"examples"`
	Notes       []string  `yaml:"notes,omitempty"`
}

type Flag struct {
	ID          string `yaml:"id"`
	Syntax      string `yaml:"syntax"`
	Description string `yaml:"description"`
	Default     string `yaml:"default,omitempty"`
	More        string `yaml:"more,omitempty"`
}

type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type TemplateData struct {
	Subcommand
	Date    string
	Version string
}

// target pairs a template with where its rendered pages land.
type target struct {
	template string
	folder   string
	prefix   string
	suffix   string
}

func main() {
	docs := os.Args[1]

	config, err := loadConfig(docs + "/templates/towerctl.yaml")
	if err != nil {
		panic(err)
	}

	targets := []target{
		{template: docs + "/templates/towerctl.md.tmpl", folder: docs + "/commands/", suffix: ".md"},
		{template: docs + "/templates/towerctl.man.tmpl", folder: docs + "/man/share/man1/", prefix: "towerctl-", suffix: ".1"},
		{template: docs + "/templates/towerctl.tldr.tmpl", folder: docs + "/tldr/", prefix: "towerctl-", suffix: ".md"},
	}

	version := getVersion()
	date := time.Now().Format("January 2, 2006")

	for _, sub := range config.Subcommands {
		sub.Flags = mergeFlags(config.Common.Flags, sub.Flags)
		data := TemplateData{Subcommand: sub, Date: date, Version: version}

		for _, t := range targets {
			if err := render(t, sub.ID, data); err != nil {
				panic(err)
			}
		}
	}
}

func loadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var config Config
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeFlags combines the shared flags with a subcommand's own, sorted by ID
// so the flag tables read alphabetically.
func mergeFlags(common, own []Flag) []Flag {
	merged := append(append([]Flag{}, common...), own...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ID < merged[j].ID
	})
	return merged
}

func render(t target, id string, data TemplateData) error {
	if err := os.MkdirAll(t.folder, 0755); err != nil {
		return err
	}

	path := t.folder + t.prefix + id + t.suffix
	fmt.Println("Generating", path)

	tmpl, err := template.ParseFiles(t.template)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return tmpl.Execute(file, data)
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "v")
}
