package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gosimple/slug"
)

// TaskDefinition is one entry of the static task catalog.
type TaskDefinition struct {
	Title  string `toml:"title" json:"title"`
	Reward int64  `toml:"reward" json:"reward"`
	URL    string `toml:"url" json:"url,omitempty"`
	Slug   string `toml:"-" json:"slug"`
}

// TaskCatalog maps task titles to rewards. It is built once and never mutated.
type TaskCatalog struct {
	tasks   []TaskDefinition
	byTitle map[string]int
	bySlug  map[string]int
}

// NewTaskCatalog validates defs and indexes them by title and slug.
func NewTaskCatalog(defs []TaskDefinition) (TaskCatalog, error) {
	if len(defs) == 0 {
		return TaskCatalog{}, fmt.Errorf("task catalog is empty")
	}

	c := TaskCatalog{
		tasks:   make([]TaskDefinition, 0, len(defs)),
		byTitle: make(map[string]int, len(defs)),
		bySlug:  make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			return TaskCatalog{}, fmt.Errorf("task catalog: entry with empty title")
		}
		if d.Reward <= 0 {
			return TaskCatalog{}, fmt.Errorf("task catalog: %q must have a positive reward", d.Title)
		}
		if _, dup := c.byTitle[d.Title]; dup {
			return TaskCatalog{}, fmt.Errorf("task catalog: duplicate title %q", d.Title)
		}
		d.Slug = slug.Make(d.Title)
		if _, dup := c.bySlug[d.Slug]; dup {
			return TaskCatalog{}, fmt.Errorf("task catalog: %q collides with slug %q", d.Title, d.Slug)
		}
		c.byTitle[d.Title] = len(c.tasks)
		c.bySlug[d.Slug] = len(c.tasks)
		c.tasks = append(c.tasks, d)
	}
	return c, nil
}

// Reward returns the reward for an exact task title.
func (c TaskCatalog) Reward(title string) (int64, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return 0, false
	}
	return c.tasks[i].Reward, true
}

// BySlug resolves a slug (as used in bot callback data) to its definition.
func (c TaskCatalog) BySlug(s string) (TaskDefinition, bool) {
	i, ok := c.bySlug[s]
	if !ok {
		return TaskDefinition{}, false
	}
	return c.tasks[i], true
}

// Tasks returns a copy of the catalog in declaration order.
func (c TaskCatalog) Tasks() []TaskDefinition {
	out := make([]TaskDefinition, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c TaskCatalog) Len() int { return len(c.tasks) }

// catalogFile is the on-disk TOML shape:
//
//	[[task]]
//	title  = "Join Telegram Group"
//	reward = 1000
//	url    = "https://t.me/benidrop"
type catalogFile struct {
	Task []TaskDefinition `toml:"task"`
}

// LoadTaskCatalogFile reads a TOML catalog from path.
func LoadTaskCatalogFile(path string) (TaskCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TaskCatalog{}, fmt.Errorf("read task catalog: %w", err)
	}
	var f catalogFile
	if _, err := toml.Decode(string(raw), &f); err != nil {
		return TaskCatalog{}, fmt.Errorf("decode task catalog %s: %w", path, err)
	}
	return NewTaskCatalog(f.Task)
}

func defaultTasks(links SocialLinks) []TaskDefinition {
	return []TaskDefinition{
		{Title: "Join Telegram Group", Reward: 1000, URL: links.TelegramGroup},
		{Title: "Follow on Twitter", Reward: 1000, URL: links.TwitterProfile},
		{Title: "Retweet Announcement", Reward: 500, URL: links.TwitterProfile},
		{Title: "Join Discord", Reward: 1000, URL: links.DiscordServer},
		{Title: "Share a Meme", Reward: 1500, URL: links.TelegramChannel},
	}
}
