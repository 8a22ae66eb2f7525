package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"bidflow/internal/models"
)

// ProjectRepository archives consolidated projects between runs. Each run gets
// a row; each project is upserted with content-hash change detection so an
// unchanged project costs nothing and a changed one leaves a version trail.
type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ArchiveStats summarizes what one archive pass did.
type ArchiveStats struct {
	New     int
	Updated int
	Skipped int
	Errors  int
}

// ArchiveRun records the run and upserts every project. It satisfies the
// pipeline's Archiver interface. Per-project failures are counted and logged,
// not fatal.
func (r *ProjectRepository) ArchiveRun(ctx context.Context, folderPath string, projects []models.ConsolidatedProject) error {
	runID := uuid.New().String()
	_, err := r.db.Exec(ctx, `
		INSERT INTO pipeline_run (id, folder, started_at, project_count)
		VALUES ($1, $2, $3, $4)
	`, runID, folderPath, time.Now(), len(projects))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stats := &ArchiveStats{}
	for _, p := range projects {
		result, err := r.upsertProject(ctx, p)
		if err != nil {
			stats.Errors++
			log.Printf("⚠️  Error archiving project %q: %v", p.ProjectName, err)
			continue
		}
		switch result {
		case "new":
			stats.New++
		case "updated":
			stats.Updated++
		case "skipped":
			stats.Skipped++
		}
	}
	log.Printf("📊 Archive run %s: %d new, %d updated, %d skipped, %d errors",
		runID, stats.New, stats.Updated, stats.Skipped, stats.Errors)
	return nil
}

// upsertProject inserts or updates one project with change detection.
// Returns "new", "updated", or "skipped".
func (r *ProjectRepository) upsertProject(ctx context.Context, p models.ConsolidatedProject) (string, error) {
	hash, err := contentHash(p)
	if err != nil {
		return "", fmt.Errorf("failed to compute hash: %w", err)
	}
	contractors := strings.Join(p.Contractors, ", ")
	now := time.Now()

	var existingHash string
	err = r.db.QueryRow(ctx,
		"SELECT content_hash FROM project WHERE name = $1",
		p.ProjectName,
	).Scan(&existingHash)

	if err != nil {
		// No existing row; insert.
		_, err = r.db.Exec(ctx, `
			INSERT INTO project (
				name, contractors, bid_due_date, job_walk, description,
				contractor_count, content_hash, first_seen, last_updated
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.ProjectName, contractors, p.BidDueDate, p.JobWalk, p.Description,
			p.ContractorCount, hash, now, now)
		if err != nil {
			return "", fmt.Errorf("failed to insert project: %w", err)
		}
		return "new", nil
	}

	if existingHash == hash {
		return "skipped", nil
	}

	snapshot, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO project_version (name, content_hash, snapshot, recorded_at)
		VALUES ($1, $2, $3, $4)
	`, p.ProjectName, hash, snapshot, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert version: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		UPDATE project SET
			contractors = $2, bid_due_date = $3, job_walk = $4, description = $5,
			contractor_count = $6, content_hash = $7, last_updated = $8
		WHERE name = $1
	`, p.ProjectName, contractors, p.BidDueDate, p.JobWalk, p.Description,
		p.ContractorCount, hash, now)
	if err != nil {
		return "", fmt.Errorf("failed to update project: %w", err)
	}
	return "updated", nil
}

// contentHash hashes the fields that constitute a material change.
func contentHash(p models.ConsolidatedProject) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal hash data: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// RecentRuns returns the most recent archived runs, newest first.
func (r *ProjectRepository) RecentRuns(ctx context.Context, limit int) ([]models.ArchivedRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, folder, started_at, project_count
		FROM pipeline_run
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ArchivedRun
	for rows.Next() {
		var run models.ArchivedRun
		if err := rows.Scan(&run.ID, &run.Folder, &run.StartedAt, &run.ProjectCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// SearchParams filter SearchProjects. Zero values mean "no filter".
type SearchParams struct {
	// Q matches name or contractors, case-insensitively.
	Q      string
	DueOn  string
	Limit  int
	Offset int
}

// SearchResult is one page of archived projects.
type SearchResult struct {
	Items        []models.ArchivedProject
	TotalRecords int
	Limit        int
	Offset       int
	HasMore      bool
}

// SearchProjects searches the archive with filters and pagination.
func (r *ProjectRepository) SearchProjects(ctx context.Context, params SearchParams) (*SearchResult, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Q != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR contractors ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+params.Q+"%")
		argPos++
	}
	if params.DueOn != "" {
		conditions = append(conditions, fmt.Sprintf("bid_due_date = $%d", argPos))
		args = append(args, params.DueOn)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM project %s", whereClause)
	var totalRecords int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalRecords); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT
			name, contractors, bid_due_date, job_walk, description,
			contractor_count, first_seen, last_updated
		FROM project
		%s
		ORDER BY last_updated DESC, name
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.ArchivedProject
	for rows.Next() {
		var p models.ArchivedProject
		var contractors string
		err := rows.Scan(
			&p.ProjectName, &contractors, &p.BidDueDate, &p.JobWalk, &p.Description,
			&p.ContractorCount, &p.FirstSeen, &p.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if contractors != "" {
			p.Contractors = strings.Split(contractors, ", ")
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return &SearchResult{
		Items:        projects,
		TotalRecords: totalRecords,
		Limit:        limit,
		Offset:       offset,
		HasMore:      offset+limit < totalRecords,
	}, nil
}

// ProjectVersions returns the change history of one project, newest first.
func (r *ProjectRepository) ProjectVersions(ctx context.Context, name string) ([]models.ArchivedProject, error) {
	rows, err := r.db.Query(ctx, `
		SELECT snapshot, recorded_at
		FROM project_version
		WHERE name = $1
		ORDER BY recorded_at DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []models.ArchivedProject
	for rows.Next() {
		var snapshot []byte
		var recordedAt time.Time
		if err := rows.Scan(&snapshot, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		var p models.ArchivedProject
		if err := json.Unmarshal(snapshot, &p.ConsolidatedProject); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		p.LastUpdated = recordedAt
		versions = append(versions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}
	return versions, nil
}
