package location

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/devmap/devmap/pkg/errors"
)

// User is one of the most-followed developers plotted on the dot map.
type User struct {
	Login     string  `json:"login"`
	Name      string  `json:"name,omitempty"`
	Location  string  `json:"location,omitempty"`
	Company   string  `json:"company,omitempty"`
	Country   string  `json:"country,omitempty"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Followers int     `json:"followers"`
}

// ProfileURL returns the user's GitHub profile URL.
func (u User) ProfileURL() string {
	return "https://github.com/" + u.Login
}

// ReadUsers parses the column-oriented users document:
//
//	{"login": ["a", "b"], "followers": [10, 5], "lat": ["37.7", "51.5"], ...}
//
// A JavaScript assignment wrapper (var topusers = {...};) is tolerated.
// Coordinates may be numbers or numeric strings; missing or unparsable
// coordinates read as NaN so the projection reports failure downstream.
func ReadUsers(r io.Reader) ([]User, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = stripAssignment(data)

	var cols map[string][]json.RawMessage
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode users")
	}

	logins := cols["login"]
	users := make([]User, len(logins))
	for i := range users {
		u := &users[i]
		u.Login = cellString(cols["login"], i)
		u.Name = cellString(cols["name"], i)
		u.Location = cellString(cols["location"], i)
		u.Company = cellString(cols["company"], i)
		u.Country = cellString(cols["country"], i)
		u.Lat = cellFloat(cols["lat"], i)
		u.Lng = cellFloat(cols["lng"], i)
		if f := cellFloat(cols["followers"], i); !math.IsNaN(f) {
			u.Followers = int(f)
		}
	}
	return users, nil
}

// ReadUsersFile reads the users document from disk.
func ReadUsersFile(path string) ([]User, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "users %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadUsers(f)
}

// TopUsers returns the first n users in reverse order, so that the most
// followed developers come last and are drawn on top.
func TopUsers(users []User, n int) []User {
	if n > len(users) {
		n = len(users)
	}
	if n < 0 {
		n = 0
	}
	out := make([]User, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = users[i]
	}
	return out
}

func stripAssignment(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if i := bytes.IndexByte(data, '{'); i > 0 && bytes.HasPrefix(data, []byte("var ")) {
		data = data[i:]
	}
	return bytes.TrimSuffix(bytes.TrimSpace(data), []byte(";"))
}

func cellString(col []json.RawMessage, i int) string {
	if i >= len(col) {
		return ""
	}
	var s string
	if err := json.Unmarshal(col[i], &s); err == nil {
		return s
	}
	return ""
}

func cellFloat(col []json.RawMessage, i int) float64 {
	if i >= len(col) || string(col[i]) == "null" {
		return math.NaN()
	}
	var f float64
	if err := json.Unmarshal(col[i], &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(col[i], &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return math.NaN()
}
