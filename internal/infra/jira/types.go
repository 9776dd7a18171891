package jira

import (
	"encoding/json"
	"fmt"
	"time"
)

// jiraTime handles Jira's REST timestamp format, which is RFC3339 with
// a compact zone offset and milliseconds.
type jiraTime struct {
	time.Time
}

const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

func (t *jiraTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(jiraTimeLayout, raw)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("failed to parse jira timestamp %q: %w", raw, err)
		}
	}
	t.Time = parsed
	return nil
}

type searchResponse struct {
	Issues []issueResponse `json:"issues"`
}

type issueResponse struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary  string       `json:"summary"`
	Created  jiraTime     `json:"created"`
	Status   *statusField `json:"status"`
	Assignee *personField `json:"assignee"`
}

type statusField struct {
	Name string `json:"name"`
}

type personField struct {
	DisplayName string `json:"displayName"`
}

type changelogResponse struct {
	Values []changelogEntry `json:"values"`
}

type changelogEntry struct {
	Created jiraTime        `json:"created"`
	Items   []changelogItem `json:"items"`
}

type changelogItem struct {
	Field    string `json:"field"`
	ToString string `json:"toString"`
}

type commentsResponse struct {
	Comments []commentResponse `json:"comments"`
}

type commentResponse struct {
	Author  personField     `json:"author"`
	Created jiraTime        `json:"created"`
	Body    json.RawMessage `json:"body"`
}
