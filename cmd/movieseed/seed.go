package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"moviecatalog/errs"
	"moviecatalog/movie"
)

type seedResult struct {
	Created int
	Skipped int
}

type movieColumns struct {
	title, country, director, description int
}

// seedMovies creates every CSV row whose title is not in the catalog yet.
// Rows without a title are skipped; limit counts created movies.
func seedMovies(ctx context.Context, svc movie.Service, r io.Reader, limit int) (seedResult, error) {
	var res seedResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	cols, err := parseMovieCSVHeader(reader)
	if err != nil {
		return res, err
	}

	for limit <= 0 || res.Created < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}

		m, ok := parseMovieRecord(record, cols)
		if !ok {
			res.Skipped++
			continue
		}

		_, err = svc.GetMovieByTitle(ctx, m.Title)
		switch {
		case err == nil:
			res.Skipped++
			continue
		case errs.ErrorCode(err) != errs.ENOTFOUND:
			return res, fmt.Errorf("lookup %q: %w", m.Title, err)
		}

		if _, err := svc.CreateMovie(ctx, m); err != nil {
			return res, fmt.Errorf("create %q: %w", m.Title, err)
		}
		res.Created++
	}

	return res, nil
}

func parseMovieCSVHeader(reader *csv.Reader) (movieColumns, error) {
	header, err := reader.Read()
	if err != nil {
		return movieColumns{}, fmt.Errorf("read csv header: %w", err)
	}

	cols := movieColumns{title: -1, country: -1, director: -1, description: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			cols.title = i
		case "country":
			cols.country = i
		case "director":
			cols.director = i
		case "description":
			cols.description = i
		}
	}
	if cols.title == -1 {
		return movieColumns{}, errors.New("missing title column in csv header")
	}

	return cols, nil
}

func parseMovieRecord(record []string, cols movieColumns) (movie.Movie, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	m := movie.Movie{
		Title:       field(cols.title),
		Country:     field(cols.country),
		Director:    field(cols.director),
		Description: field(cols.description),
	}
	return m, m.Title != ""
}
