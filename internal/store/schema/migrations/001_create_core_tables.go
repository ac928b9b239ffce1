package migrations

import "github.com/mrleolava/job-search-command-center/internal/store/schema"

var CreateCoreTables = schema.Migration{
	Version:     1,
	Description: "Create companies, search_configs, jobs and applications tables",
	Up: `
		CREATE TABLE IF NOT EXISTS companies (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			profile_id TEXT NOT NULL,
			name TEXT NOT NULL,
			website TEXT,
			greenhouse_slug TEXT,
			ashby_slug TEXT,
			lever_slug TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS companies_profile_idx ON companies (profile_id);

		CREATE TABLE IF NOT EXISTS search_configs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			profile_id TEXT NOT NULL UNIQUE,
			title_keywords TEXT[] NOT NULL DEFAULT '{}',
			exclude_keywords TEXT[] NOT NULL DEFAULT '{}',
			locations TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY,
			company TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			location TEXT,
			date_posted TEXT,
			source TEXT NOT NULL,
			is_remote BOOLEAN NOT NULL DEFAULT false,
			salary_min INT,
			salary_max INT,
			description TEXT,
			seniority_score INT,
			is_dismissed BOOLEAN NOT NULL DEFAULT false,
			application_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS jobs_backfill_idx ON jobs (salary_min, salary_max)
			WHERE description IS NOT NULL;

		CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			job_id UUID NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
			profile_id TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT 'saved',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (job_id, profile_id)
		);
	`,
	Down: `
		DROP TABLE IF EXISTS applications;
		DROP TABLE IF EXISTS jobs;
		DROP TABLE IF EXISTS search_configs;
		DROP TABLE IF EXISTS companies;
	`,
}
