package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/config"
	"sitecraft.dev/forumservice/internal/middleware"

	categoryHttp "sitecraft.dev/forumservice/internal/modules/category/delivery/http"
	categoryRepo "sitecraft.dev/forumservice/internal/modules/category/repository"
	categoryService "sitecraft.dev/forumservice/internal/modules/category/service"

	replyHttp "sitecraft.dev/forumservice/internal/modules/reply/delivery/http"
	replyRepo "sitecraft.dev/forumservice/internal/modules/reply/repository"
	replyService "sitecraft.dev/forumservice/internal/modules/reply/service"

	statHttp "sitecraft.dev/forumservice/internal/modules/stat/delivery/http"
	statRepo "sitecraft.dev/forumservice/internal/modules/stat/repository"
	statService "sitecraft.dev/forumservice/internal/modules/stat/service"

	threadHttp "sitecraft.dev/forumservice/internal/modules/thread/delivery/http"
	threadRepo "sitecraft.dev/forumservice/internal/modules/thread/repository"
	threadService "sitecraft.dev/forumservice/internal/modules/thread/service"

	voteHttp "sitecraft.dev/forumservice/internal/modules/vote/delivery/http"
	voteRepo "sitecraft.dev/forumservice/internal/modules/vote/repository"
	voteService "sitecraft.dev/forumservice/internal/modules/vote/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	categoryRepository := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categoryRepository)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	threadRepository := threadRepo.NewRepository(db)
	threadSvc := threadService.NewService(threadRepository, categoryRepository, redisClient)
	threadHandler := threadHttp.NewThreadHandler(threadSvc)

	replyRepository := replyRepo.NewReplyRepository(db)
	replySvc := replyService.NewReplyService(replyRepository, threadRepository, redisClient)
	replyHandler := replyHttp.NewReplyHandler(replySvc)

	voteRepository := voteRepo.NewVoteRepository(db)
	voteSvc := voteService.NewVoteService(voteRepository, threadRepository, replyRepository)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	statRepository := statRepo.NewStatRepository(db)
	statSvc := statService.NewStatService(statRepository, redisClient, cfg.StatsCacheTTL)
	statHandler := statHttp.NewStatHandler(statSvc)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)

	api := router.Group("/api/forum")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/categories", categoryHandler.ListCategories)

		api.GET("/threads", threadHandler.ListThreads)
		api.GET("/threads/:id", threadHandler.GetThread)
		api.POST("/threads", threadHandler.CreateThread)
		api.PUT("/threads/:id", threadHandler.UpdateThread)
		api.DELETE("/threads/:id", threadHandler.DeleteThread)

		api.GET("/threads/:id/replies", replyHandler.ListReplies)
		api.POST("/threads/:id/replies", replyHandler.CreateReply)
		api.PUT("/replies/:id", replyHandler.UpdateReply)
		api.DELETE("/replies/:id", replyHandler.DeleteReply)

		api.POST("/threads/:id/like", voteHandler.ToggleThreadVote)
		api.POST("/replies/:id/like", voteHandler.ToggleReplyVote)

		api.GET("/search", threadHandler.SearchThreads)
		api.GET("/stats", statHandler.GetStats)

		admin := api.Group("")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/categories", categoryHandler.CreateCategory)
			admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
			admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
			admin.POST("/threads/:id/moderate", threadHandler.ModerateThread)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
