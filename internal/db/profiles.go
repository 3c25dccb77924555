package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/career-network/internal/types"
)

// MaxSearchResults caps directory search results
const MaxSearchResults = 50

const profileColumns = `profile_id, name, email, location, headline, about, role_current,
	current_company, industry, years_experience, seniority_level, skills, experience,
	education, connections, goals, needs, can_offer, remote_preference, source`

// searchColumn maps a search field to its column. Only these fixed names are
// ever interpolated into SQL.
func searchColumn(field types.SearchField) (string, error) {
	switch field {
	case types.SearchByName:
		return "name", nil
	case types.SearchByIndustry:
		return "industry", nil
	default:
		return "", fmt.Errorf("unknown search field: %q", field)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern with LIKE wildcards in q escaped.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}

// SearchProfiles returns up to MaxSearchResults profiles whose field contains
// query, case-insensitively, ordered by name
func (db *DB) SearchProfiles(ctx context.Context, field types.SearchField, query string) ([]types.Profile, error) {
	column, err := searchColumn(field)
	if err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles WHERE `+column+` ILIKE $1
		 ORDER BY name, profile_id
		 LIMIT $2`,
		likePattern(query), MaxSearchResults,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	profiles := []types.Profile{}
	for rows.Next() {
		var p types.Profile
		var experience, education []byte
		if err := rows.Scan(
			&p.ProfileID, &p.Name, &p.Email, &p.Location, &p.Headline, &p.About, &p.RoleCurrent,
			&p.CurrentCompany, &p.Industry, &p.YearsExperience, &p.SeniorityLevel, &p.Skills, &experience,
			&education, &p.Connections, &p.Goals, &p.Needs, &p.CanOffer, &p.RemotePreference, &p.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		if err := json.Unmarshal(experience, &p.Experience); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experience for %s: %w", p.ProfileID, err)
		}
		if err := json.Unmarshal(education, &p.Education); err != nil {
			return nil, fmt.Errorf("failed to unmarshal education for %s: %w", p.ProfileID, err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// UpsertProfile inserts or replaces a directory profile
func (db *DB) UpsertProfile(ctx context.Context, p types.Profile) error {
	experience, err := json.Marshal(nonNil(p.Experience))
	if err != nil {
		return fmt.Errorf("failed to marshal experience: %w", err)
	}
	education, err := json.Marshal(nonNil(p.Education))
	if err != nil {
		return fmt.Errorf("failed to marshal education: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		 ON CONFLICT (profile_id) DO UPDATE SET
		   name = EXCLUDED.name, email = EXCLUDED.email, location = EXCLUDED.location,
		   headline = EXCLUDED.headline, about = EXCLUDED.about, role_current = EXCLUDED.role_current,
		   current_company = EXCLUDED.current_company, industry = EXCLUDED.industry,
		   years_experience = EXCLUDED.years_experience, seniority_level = EXCLUDED.seniority_level,
		   skills = EXCLUDED.skills, experience = EXCLUDED.experience, education = EXCLUDED.education,
		   connections = EXCLUDED.connections, goals = EXCLUDED.goals, needs = EXCLUDED.needs,
		   can_offer = EXCLUDED.can_offer, remote_preference = EXCLUDED.remote_preference,
		   source = EXCLUDED.source`,
		p.ProfileID, p.Name, p.Email, p.Location, p.Headline, p.About, p.RoleCurrent,
		p.CurrentCompany, p.Industry, p.YearsExperience, p.SeniorityLevel, nonNil(p.Skills), experience,
		education, p.Connections, nonNil(p.Goals), nonNil(p.Needs), nonNil(p.CanOffer), p.RemotePreference, p.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.ProfileID, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
