package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			return v
		}
	}
	return def
}

func report(name string, ds []time.Duration) {
	fmt.Printf("%-16s n=%-6d p50=%-10v p95=%-10v p99=%v\n", name, len(ds), pct(ds, 0.50), pct(ds, 0.95), pct(ds, 0.99))
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	if err := database.Migrate(db); err != nil {
		panic(err)
	}
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// params
	USERS := envInt("USERS", 50)       // authors
	POSTS := envInt("POSTS", 1000)     // posts in total
	COMMENTS := envInt("COMMENTS", 10) // comments per post
	READS := envInt("READS", 500)      // detail / list reads

	// seed users
	users := make([]*model.User, USERS)
	for i := range users {
		id := uuid.New().String()
		users[i] = &model.User{Username: "bench" + id[:8], Email: id[:8] + "@example.com", PasswordHash: "x"}
		if err := userRepo.Create(ctx, users[i]); err != nil {
			panic(err)
		}
	}

	// posts
	postIDs := make([]uint, 0, POSTS)
	createPost := make([]time.Duration, 0, POSTS)
	for i := 0; i < POSTS; i++ {
		p := &model.Post{Title: fmt.Sprintf("bench post %d", i), Content: "benchmark content body", AuthorID: users[i%USERS].ID}
		t0 := time.Now()
		if err := postRepo.Create(ctx, p); err != nil {
			panic(err)
		}
		createPost = append(createPost, time.Since(t0))
		postIDs = append(postIDs, p.ID)
	}

	// comments
	createComment := make([]time.Duration, 0, POSTS*COMMENTS)
	for i, pid := range postIDs {
		for j := 0; j < COMMENTS; j++ {
			c := &model.Comment{PostID: pid, AuthorID: users[(i+j)%USERS].ID, Content: "nice post"}
			t0 := time.Now()
			if err := commentRepo.Create(ctx, c); err != nil {
				panic(err)
			}
			createComment = append(createComment, time.Since(t0))
		}
	}

	// reads: detail with comments
	detail := make([]time.Duration, 0, READS)
	for i := 0; i < READS; i++ {
		t0 := time.Now()
		_ = must(postRepo.GetDetail(ctx, postIDs[i%len(postIDs)]))
		detail = append(detail, time.Since(t0))
	}

	// reads: full list + grouped comment counts
	listRuns := READS / 50
	if listRuns < 1 {
		listRuns = 1
	}
	list := make([]time.Duration, 0, listRuns)
	for i := 0; i < listRuns; i++ {
		t0 := time.Now()
		posts := must(postRepo.List(ctx))
		ids := make([]uint, len(posts))
		for k, p := range posts {
			ids[k] = p.ID
		}
		_ = must(postRepo.CommentCounts(ctx, ids))
		list = append(list, time.Since(t0))
	}

	// cascade delete
	deletes := make([]time.Duration, 0, len(postIDs))
	for _, pid := range postIDs {
		t0 := time.Now()
		if err := postRepo.Delete(ctx, pid); err != nil {
			panic(err)
		}
		deletes = append(deletes, time.Since(t0))
	}

	fmt.Printf("driver=%s users=%d posts=%d comments/post=%d\n", cfg.Database.Driver, USERS, POSTS, COMMENTS)
	report("create_post", createPost)
	report("create_comment", createComment)
	report("get_detail", detail)
	report("list+counts", list)
	report("delete_cascade", deletes)
}
