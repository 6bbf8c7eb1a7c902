package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/v1")

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)
	auth.POST("/refresh-tokens", s.refreshTokens)
	auth.POST("/forgot-password", s.forgotPassword)
	auth.POST("/reset-password", s.resetPassword)
	auth.POST("/verify-email", s.verifyEmail)
	auth.POST("/send-verification-email", s.sendVerificationEmail, s.middleware.JWT.RequireJWT())

	users := api.Group("/users")
	users.Use(s.middleware.JWT.RequireJWT())
	users.GET("/me", s.getOwnProfile)
}
