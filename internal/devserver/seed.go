package devserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML document the dev server starts from.
type Seed struct {
	Problems    []SeedProblem    `yaml:"problems"`
	Contests    []SeedContest    `yaml:"contests"`
	Ladders     []SeedLadder     `yaml:"ladders"`
	Submissions []SeedSubmission `yaml:"submissions"`
}

type SeedProblem struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Link      string   `yaml:"link"`
	Tags      []string `yaml:"tags"`
	SolvedBy  []string `yaml:"solved_by"`
	ContestID int      `yaml:"contest_id"`
	Index     string   `yaml:"index"`
	Rating    int      `yaml:"rating"`
}

type SeedContest struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type SeedLadder struct {
	ID        int      `yaml:"id"`
	Title     string   `yaml:"title"`
	Users     []string `yaml:"users"`
	Questions []string `yaml:"questions"`
}

type SeedSubmission struct {
	User     string `yaml:"user"`
	Question string `yaml:"question"`
	Date     string `yaml:"date"`
}

func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

const defaultSeed = `
problems:
  - id: "1"
    title: Two Sum
    link: https://leetcode.com/problems/two-sum/
    tags: [Array, Easy]
  - id: "2"
    title: Longest Increasing Subsequence
    link: https://leetcode.com/problems/longest-increasing-subsequence/
    tags: [Dynamic Programming, Medium]
  - id: "3"
    title: Number of Islands
    link: https://leetcode.com/problems/number-of-islands/
    tags: [Graph, BFS, Medium]
  - id: "4"
    title: Chef and Strings
    link: https://www.codechef.com/problems/CHEFSTR
    tags: [CodeChef, "1450"]
  - id: "5"
    title: Watermelon
    link: https://codeforces.com/contest/4/problem/A
    tags: [math, brute force]
    contest_id: 4
    index: A
    rating: 800
contests:
  - id: 4
    name: Codeforces Beta Round 4 (Div. 2 Only)
ladders:
  - id: 1
    title: Starter Ladder
    users: [demo]
    questions: ["1", "2", "3"]
`

// DefaultSeed is used when no seed file is given.
func DefaultSeed() Seed {
	seed, err := ParseSeed([]byte(defaultSeed))
	if err != nil {
		panic(err)
	}
	return seed
}
