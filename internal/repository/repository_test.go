package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/user/swfilms/internal/model"
	"gorm.io/gorm"
)

// setupTestDB 启动 PostgreSQL 容器并应用迁移
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("跳过集成测试: 未设置 TEST_INTEGRATION")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("swfilms_test"),
		postgres.WithUsername("swfilms"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("启动 PostgreSQL 容器失败: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("停止容器失败: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("获取连接串失败: %v", err)
	}

	if err := Migrate(dsn); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	db, err := InitDB(dsn)
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func TestLogRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repos := NewRepositories(db)

	user := &model.User{APIKey: "key-123", Name: "tester"}
	if err := repos.User.Create(ctx, user); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	in := &model.LogEntry{
		RequestMethod:    "GET",
		Endpoint:         "/api/films",
		ResponseCode:     200,
		UserIP:           "10.0.0.1",
		AuthorizedUserID: &user.ID,
	}
	id, err := repos.Log.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create() 错误: %v", err)
	}
	if id == 0 {
		t.Fatal("未生成 ID")
	}
	if in.RegisterDate.IsZero() {
		t.Error("RegisterDate 未回填")
	}

	anon := &model.LogEntry{
		RequestMethod: "POST",
		Endpoint:      "/api/characters-names",
		ResponseCode:  400,
		UserIP:        model.UnknownIP,
	}
	if _, err := repos.Log.Create(ctx, anon); err != nil {
		t.Fatalf("Create() 错误: %v", err)
	}

	now := time.Now()
	got, err := repos.Log.FindBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("FindBetween() 错误: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindBetween() 返回 %d 条, 期望 2", len(got))
	}

	first := got[0]
	if first.ID != id || first.RequestMethod != in.RequestMethod || first.Endpoint != in.Endpoint ||
		first.ResponseCode != in.ResponseCode || first.UserIP != in.UserIP {
		t.Errorf("第一条记录不一致: %+v", first)
	}
	if first.AuthorizedUserID == nil || *first.AuthorizedUserID != user.ID {
		t.Errorf("AuthorizedUserID = %v, 期望 %d", first.AuthorizedUserID, user.ID)
	}
	if got[1].AuthorizedUserID != nil {
		t.Errorf("匿名请求的 AuthorizedUserID 应保持 NULL, got %d", *got[1].AuthorizedUserID)
	}

	count, err := repos.Log.CountBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil || count != 2 {
		t.Errorf("CountBetween() = %d, %v; 期望 2", count, err)
	}

	none, err := repos.Log.FindBetween(ctx, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	if err != nil || len(none) != 0 {
		t.Errorf("区间外不应返回记录: %d, %v", len(none), err)
	}
}

func TestUserRepository_FindByAPIKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	if err := repo.Create(ctx, &model.User{APIKey: "valid", Name: "a"}); err != nil {
		t.Fatalf("Create() 错误: %v", err)
	}

	u, err := repo.FindByAPIKey(ctx, "valid")
	if err != nil || u == nil || u.Name != "a" {
		t.Errorf("FindByAPIKey(valid) = %+v, %v", u, err)
	}

	u, err = repo.FindByAPIKey(ctx, "missing")
	if err != nil || u != nil {
		t.Errorf("FindByAPIKey(missing) = %+v, %v; 期望 nil, nil", u, err)
	}
}

func TestLogRepository_DeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewLogRepository(db)

	old := &model.LogEntry{
		RegisterDate:  time.Now().AddDate(0, 0, -40),
		RequestMethod: "GET",
		Endpoint:      "/api/films",
		ResponseCode:  200,
		UserIP:        model.UnknownIP,
	}
	fresh := &model.LogEntry{
		RequestMethod: "GET",
		Endpoint:      "/api/films",
		ResponseCode:  200,
		UserIP:        model.UnknownIP,
	}
	for _, e := range []*model.LogEntry{old, fresh} {
		if _, err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() 错误: %v", err)
		}
	}

	affected, err := repo.DeleteOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("DeleteOlderThan() 错误: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, 期望 1", affected)
	}
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@h:5432/db?sslmode=disable":   "pgx5://u:p@h:5432/db?sslmode=disable",
		"postgresql://u:p@h:5432/db?sslmode=disable": "pgx5://u:p@h:5432/db?sslmode=disable",
		"pgx5://u:p@h/db":                            "pgx5://u:p@h/db",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Errorf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}
