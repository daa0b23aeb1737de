// Package handlers это HTTP+JSON интерфейс API.
package handlers

import (
	"log/slog"
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
)

type Options struct {
	DB             *database.DB
	Auth           *auth.Service
	Store          ImageStore
	Files          http.Handler // отдаёт загруженные файлы, может быть nil
	PublicPath     string
	MaxFileSize    int64
	MaxFiles       int
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter регистрирует маршруты и оборачивает mux цепочкой middleware.
func NewRouter(o Options) http.Handler {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	errs := &ErrorHandler{Logger: o.Logger}
	authn := &Authenticator{Auth: o.Auth, Err: errs, Logger: o.Logger}

	users := database.NewUserService(o.DB)
	posts := database.NewPostService(o.DB)

	authHandler := &AuthHandler{Auth: o.Auth, Users: users, Err: errs}
	postHandler := &PostHandler{Posts: posts, Err: errs}
	commentHandler := &CommentHandler{Comments: database.NewCommentService(o.DB), Err: errs}
	likeHandler := &LikeHandler{Likes: database.NewLikeService(o.DB), Err: errs}
	followHandler := &FollowHandler{Follows: database.NewFollowService(o.DB), Users: users, Err: errs}
	userHandler := &UserHandler{Users: users, Err: errs}
	filterHandler := &FilterHandler{Users: users, Err: errs}
	uploadHandler := &UploadHandler{Store: o.Store, MaxFileSize: o.MaxFileSize, MaxFiles: o.MaxFiles, Err: errs}
	adminHandler := &AdminHandler{DB: o.DB, Admins: database.NewAdminService(o.DB), Users: users, Posts: posts, Err: errs}

	user, admin, signedIn := authn.RequireUser, authn.RequireAdmin, authn.RequireAny

	mux := http.NewServeMux()

	// Авторизация
	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /auth/google", authHandler.GoogleLogin)
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /me", signedIn(authHandler.Me))
	mux.HandleFunc("POST /admin/login", authHandler.AdminLogin)
	mux.HandleFunc("POST /admin/logout", authHandler.Logout)

	// Посты
	mux.HandleFunc("GET /posts", postHandler.ListPosts)
	mux.HandleFunc("GET /posts/{id}", postHandler.GetPost)
	mux.HandleFunc("POST /posts", user(postHandler.CreatePost))
	mux.HandleFunc("PUT /posts/{id}", signedIn(postHandler.UpdatePost))
	mux.HandleFunc("DELETE /posts/{id}", signedIn(postHandler.DeletePost))
	mux.HandleFunc("POST /shares", postHandler.Share)
	mux.HandleFunc("POST /post-views", postHandler.View)
	mux.HandleFunc("GET /categories", filterHandler.Categories)

	// Комментарии и лайки
	mux.HandleFunc("GET /comments/{postId}", commentHandler.ListComments)
	mux.HandleFunc("POST /comments", user(commentHandler.AddComment))
	mux.HandleFunc("DELETE /comments/{id}", signedIn(commentHandler.DeleteComment))
	mux.HandleFunc("POST /likes", user(likeHandler.Like))
	mux.HandleFunc("DELETE /likes", user(likeHandler.Unlike))

	// Подписки и пользователи
	mux.HandleFunc("POST /follow", user(followHandler.Follow))
	mux.HandleFunc("POST /unfollow", user(followHandler.Unfollow))
	mux.HandleFunc("DELETE /follow", user(followHandler.Unfollow))
	mux.HandleFunc("GET /followers/{id}", followHandler.Followers)
	mux.HandleFunc("GET /following/{id}", followHandler.Following)
	mux.HandleFunc("GET /user/{id}", userHandler.GetUser)
	mux.HandleFunc("GET /user/{id}/posts", postHandler.UserPosts)
	mux.HandleFunc("PUT /user/{id}", user(userHandler.UpdateUser))
	mux.HandleFunc("DELETE /user/{id}", signedIn(userHandler.DeleteUser))
	mux.HandleFunc("GET /search-users", filterHandler.SearchUsers)
	mux.HandleFunc("GET /suggested-users", filterHandler.SuggestedUsers)

	mux.HandleFunc("POST /api/upload-images", user(uploadHandler.UploadImages))
	if o.Files != nil && o.PublicPath != "" {
		mux.Handle("GET "+o.PublicPath, o.Files)
	}

	// Админка
	mux.HandleFunc("GET /admin/stats", admin(adminHandler.Stats))
	mux.HandleFunc("GET /admin/users", admin(adminHandler.ListUsers))
	mux.HandleFunc("GET /admin/blogs", admin(adminHandler.ListBlogs))
	mux.HandleFunc("PUT /admin/users/{id}/verify", admin(adminHandler.VerifyUser))
	mux.HandleFunc("DELETE /admin/users/{id}", admin(adminHandler.DeleteUser))
	mux.HandleFunc("DELETE /admin/blogs/{id}", admin(adminHandler.DeleteBlog))
	mux.HandleFunc("POST /admin/reconcile", admin(adminHandler.Reconcile))

	mux.HandleFunc("/", errs.NotFound)

	var h http.Handler = mux
	h = RequestLogger(o.Logger)(h)
	h = authn.Middleware(h)
	h = SecureHeaders(h)
	h = CORS(o.AllowedOrigins)(h)
	h = errs.RecoveryMiddleware(h)
	return h
}
