package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	admin "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instanceadmin "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Run applies every SQL migration file under the repository's migrations/
// directory to the target database, creating the instance and database first
// when they do not exist (the emulator starts empty).
func Run(ctx context.Context, projectID, instanceID, databaseID string) error {
	emulatorHost := os.Getenv("SPANNER_EMULATOR_HOST")

	projectName := fmt.Sprintf("projects/%s", projectID)
	instanceName := fmt.Sprintf("projects/%s/instances/%s", projectID, instanceID)
	databasePath := fmt.Sprintf("projects/%s/instances/%s/databases/%s", projectID, instanceID, databaseID)

	var opts []option.ClientOption
	if emulatorHost != "" {
		fmt.Printf("Using Spanner emulator at %s\n", emulatorHost)
		opts = append(opts, option.WithEndpoint(trimScheme(emulatorHost)))
	}

	instanceAdmin, err := instanceadmin.NewInstanceAdminClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	if err := ensureInstance(ctx, instanceAdmin, projectName, instanceName, instanceID); err != nil {
		return err
	}

	dbAdmin, err := admin.NewDatabaseAdminClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create database admin client: %w", err)
	}
	defer dbAdmin.Close()

	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	statements, err := loadStatements(dir)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		fmt.Println("No DDL statements found in migrations directory")
		return nil
	}

	_, err = dbAdmin.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: databasePath})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			fmt.Printf("Creating database %s with %d DDL statement(s)\n", databaseID, len(statements))
			op, err := dbAdmin.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
				Parent:          instanceName,
				CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", databaseID),
				ExtraStatements: statements,
			})
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			if _, err := op.Wait(ctx); err != nil {
				return fmt.Errorf("database creation failed: %w", err)
			}
			fmt.Printf("Database created: %s\n", databasePath)
			return nil
		}
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	fmt.Printf("Applying %d DDL statement(s) to %s\n", len(statements), databaseID)
	op, err := dbAdmin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   databasePath,
		Statements: statements,
	})
	if err != nil {
		return fmt.Errorf("failed to start migrations: %w", err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to complete migrations: %w", err)
	}

	fmt.Printf("Applied %d migration statement(s)\n", len(statements))
	return nil
}

func ensureInstance(ctx context.Context, client *instanceadmin.InstanceAdminClient, projectName, instanceName, instanceID string) error {
	_, err := client.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: instanceName})
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.NotFound {
		return fmt.Errorf("failed to check instance existence: %w", err)
	}

	fmt.Printf("Creating instance %s\n", instanceID)
	op, err := client.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     projectName,
		InstanceId: instanceID,
		Instance: &instancepb.Instance{
			DisplayName: instanceID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("instance creation failed: %w", err)
	}
	return nil
}

func trimScheme(host string) string {
	// gRPC endpoints carry no scheme
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimPrefix(host, "https://")
}

// findMigrationsDir walks up from the working directory to the module root
// (marked by go.mod) and expects migrations/ beside it.
func findMigrationsDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			path := filepath.Join(dir, "migrations")
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
			return "", fmt.Errorf("migrations directory not found at %s", path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not find module root (searched upward from %s)", wd)
}

// loadStatements reads every .sql file in lexical order and splits it into
// individual DDL statements.
func loadStatements(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	var statements []string
	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		parsed := parseDDLStatements(string(sql))
		fmt.Printf("Reading %s: %d DDL statement(s)\n", filepath.Base(file), len(parsed))
		statements = append(statements, parsed...)
	}

	return statements, nil
}

// parseDDLStatements splits a migration file into statements, dropping
// comments and trailing semicolons (the admin API rejects them).
func parseDDLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(current.String()), ";"))
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if idx := strings.Index(trimmed, "--"); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[:idx])
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(trimmed)

		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()

	return statements
}
