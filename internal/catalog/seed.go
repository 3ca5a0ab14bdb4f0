package catalog

import (
	"fmt"
	"log/slog"
)

func intPtr(v int) *int { return &v }

// seedMovies is the starter catalog loaded when the movies table is empty,
// so a fresh deployment has something to recommend.
var seedMovies = []Movie{
	{MovieName: "The Shawshank Redemption", Rating: 9.3, Runtime: 142, MetaScore: intPtr(82),
		Plot: "Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency.",
		Genres: []Genre{{GenreName: "Drama"}}},
	{MovieName: "The Godfather", Rating: 9.2, Runtime: 175, MetaScore: intPtr(100),
		Plot: "The aging patriarch of an organized crime dynasty transfers control of his clandestine empire to his reluctant son.",
		Genres: []Genre{{GenreName: "Crime"}, {GenreName: "Drama"}}},
	{MovieName: "The Dark Knight", Rating: 9.0, Runtime: 152, MetaScore: intPtr(84),
		Plot: "When the menace known as the Joker wreaks havoc on Gotham, Batman must accept one of the greatest tests of his ability to fight injustice.",
		Genres: []Genre{{GenreName: "Action"}, {GenreName: "Crime"}, {GenreName: "Drama"}}},
	{MovieName: "12 Angry Men", Rating: 9.0, Runtime: 96, MetaScore: intPtr(97),
		Plot: "The jury in a New York City murder trial is frustrated by a single member whose skeptical caution forces them to reconsider the evidence.",
		Genres: []Genre{{GenreName: "Crime"}, {GenreName: "Drama"}}},
	{MovieName: "Pulp Fiction", Rating: 8.9, Runtime: 154, MetaScore: intPtr(95),
		Plot: "The lives of two mob hitmen, a boxer, a gangster and his wife intertwine in four tales of violence and redemption.",
		Genres: []Genre{{GenreName: "Crime"}, {GenreName: "Drama"}}},
	{MovieName: "Inception", Rating: 8.8, Runtime: 148, MetaScore: intPtr(74),
		Plot: "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea in a C.E.O.'s mind.",
		Genres: []Genre{{GenreName: "Action"}, {GenreName: "Sci-Fi"}}},
	{MovieName: "Fight Club", Rating: 8.8, Runtime: 139, MetaScore: intPtr(67),
		Plot: "An insomniac office worker and a devil-may-care soap maker form an underground fight club that evolves into much more.",
		Genres: []Genre{{GenreName: "Drama"}}},
	{MovieName: "Forrest Gump", Rating: 8.8, Runtime: 142, MetaScore: intPtr(82),
		Plot: "The history of the United States from the 1950s to the '70s unfolds from the perspective of an Alabama man with an IQ of 75.",
		Genres: []Genre{{GenreName: "Drama"}, {GenreName: "Romance"}}},
	{MovieName: "The Matrix", Rating: 8.7, Runtime: 136, MetaScore: intPtr(73),
		Plot: "A computer hacker learns that reality as he knows it is a simulation and joins a rebellion against its controllers.",
		Genres: []Genre{{GenreName: "Action"}, {GenreName: "Sci-Fi"}}},
	{MovieName: "Goodfellas", Rating: 8.7, Runtime: 145, MetaScore: intPtr(92),
		Plot: "The story of Henry Hill and his life in the mob, covering his relationship with his wife and his partners in crime.",
		Genres: []Genre{{GenreName: "Crime"}, {GenreName: "Drama"}}},
	{MovieName: "Interstellar", Rating: 8.7, Runtime: 169, MetaScore: intPtr(74),
		Plot: "When Earth becomes uninhabitable, a team of researchers travels through a wormhole in search of a new home for mankind.",
		Genres: []Genre{{GenreName: "Adventure"}, {GenreName: "Sci-Fi"}}},
	{MovieName: "Parasite", Rating: 8.5, Runtime: 132, MetaScore: intPtr(97),
		Plot: "Greed and class discrimination threaten the newly formed symbiotic relationship between the wealthy Park family and the destitute Kim clan.",
		Genres: []Genre{{GenreName: "Drama"}, {GenreName: "Thriller"}}},
}

// SeedIfEmpty loads the starter catalog when the movies table is empty.
func SeedIfEmpty(repo *Repository) error {
	count, err := repo.CountMovies()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, m := range seedMovies {
		if _, err := repo.CreateMovie(m); err != nil {
			return fmt.Errorf("seed movie %q: %w", m.MovieName, err)
		}
	}

	slog.Info("seeded movie catalog", "movies", len(seedMovies))
	return nil
}
