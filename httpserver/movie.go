package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"moviecatalog/errs"
	"moviecatalog/movie"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	read := []echo.MiddlewareFunc{s.requireMovieService}
	write := append(s.writeGuard(), s.requireMovieService)

	g.GET("", s.handleListMovies, read...)
	g.GET("/:id", s.handleGetMovie, read...)
	g.GET("/title/:title", s.handleGetMovieByTitle, read...)
	g.GET("/country/:country", s.handleListMoviesByCountry, read...)
	g.POST("", s.handleCreateMovie, write...)
	g.PUT("/:id", s.handleUpdateMovie, write...)
	g.DELETE("/:id", s.handleDeleteMovie, write...)
}

func (s *Server) requireMovieService(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.MovieService == nil {
			return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
		}
		return next(c)
	}
}

// handleListMovies godoc
// @Summary List Movies
// @Description List every movie ordered by id
// @Tags movies
// @Produce json
// @Success 200 {array} movie.Movie
// @Failure 500 {object} APIResponse
// @Router /movies [get]
func (s *Server) handleListMovies(c echo.Context) error {
	movies, err := s.MovieService.ListMovies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movies)
}

// handleGetMovie godoc
// @Summary Get Movie
// @Tags movies
// @Produce json
// @Param id path int true "Movie id"
// @Success 200 {object} movie.Movie
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	id, err := parseMovieID(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.GetMovie(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// handleGetMovieByTitle godoc
// @Summary Get Movie By Title
// @Description Exact, case-sensitive title match; the lowest id wins on duplicates
// @Tags movies
// @Produce json
// @Param title path string true "Movie title"
// @Success 200 {object} movie.Movie
// @Failure 404 {object} APIResponse
// @Router /movies/title/{title} [get]
func (s *Server) handleGetMovieByTitle(c echo.Context) error {
	m, err := s.MovieService.GetMovieByTitle(c.Request().Context(), pathParam(c, "title"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// handleListMoviesByCountry godoc
// @Summary List Movies By Country
// @Tags movies
// @Produce json
// @Param country path string true "Country"
// @Success 200 {array} movie.Movie
// @Router /movies/country/{country} [get]
func (s *Server) handleListMoviesByCountry(c echo.Context) error {
	movies, err := s.MovieService.ListMoviesByCountry(c.Request().Context(), pathParam(c, "country"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movies)
}

// handleCreateMovie godoc
// @Summary Create Movie
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body MovieRequest true "Movie"
// @Success 201 {object} movie.Movie
// @Header 201 {string} Location "/movies/{id}"
// @Failure 400 {object} APIResponse
// @Router /movies [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	var req MovieRequest
	if err := c.Bind(&req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := s.MovieService.CreateMovie(c.Request().Context(), req.ToMovie())
	if err != nil {
		return err
	}

	id, _ := created.ID()
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/movies/%d", id))
	return c.JSON(http.StatusCreated, created)
}

// handleUpdateMovie godoc
// @Summary Update Movie
// @Description Applies the fields present in the payload; never creates
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie id"
// @Param payload body UpdateMovieRequest true "Fields to change"
// @Success 200 {object} movie.Movie
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /movies/{id} [put]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	id, err := parseMovieID(c)
	if err != nil {
		return err
	}

	var req UpdateMovieRequest
	if err := c.Bind(&req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := s.MovieService.UpdateMovie(c.Request().Context(), id, req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// handleDeleteMovie godoc
// @Summary Delete Movie
// @Tags movies
// @Security BearerAuth
// @Param id path int true "Movie id"
// @Success 204
// @Failure 404 {object} APIResponse
// @Router /movies/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	id, err := parseMovieID(c)
	if err != nil {
		return err
	}

	if err := s.MovieService.DeleteMovie(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// parseMovieID accepts positive base-10 ids only.
func parseMovieID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, movie.ErrInvalidID
	}
	return id, nil
}

// pathParam returns a decoded path parameter. Echo routes on URL.RawPath
// only when the path holds escapes such as %2F; otherwise the parameter is
// already decoded and must not be unescaped again.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
