// Package mockapi provides a very basic mock user API for examples, tests and the csvexport demo.
// The data is generated deterministically, only the latency is random.
// The implementation is naive and uses full scan for all operations.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("mockapi: user not found")

type User struct {
	ID         int
	Name       string
	Email      string
	Age        int
	Department string
	IsActive   bool
	Balance    float64
	CreatedAt  time.Time
	LastLogin  *time.Time // nil if the user never logged in
}

// don't use pointers here, to make sure that raw data is not accessible from outside
var users []User

var mu sync.RWMutex

var maxLatency = 100 * time.Millisecond

func init() {
	const usersCount = 100

	var adjs = []string{"Big", "Small", "Fast", "Slow", "Smart", "Happy", "Sad", "Funny", "Serious", "Angry"}
	var nouns = []string{"Dog", "Cat", "Bird", "Fish", "Mouse", "Elephant", "Lion", "Tiger", "Bear", "Wolf"}
	var departments = []string{"HR", "IT", "Finance", "Marketing", "Sales", "Support", "Engineering", "Management"}

	epoch := time.Date(2020, time.January, 1, 9, 0, 0, 0, time.UTC)

	mu.Lock()
	defer mu.Unlock()

	// Use deterministic values for all fields to make examples reproducible
	users = make([]User, 0, usersCount)

	for i := 1; i <= usersCount; i++ {
		name := adjs[hash(i, "name1")%len(adjs)] + " " + nouns[hash(i, "name2")%len(nouns)]

		user := User{
			ID:         i,
			Name:       name,
			Email:      fmt.Sprintf("%s.%d@example.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), i),
			Age:        hash(i, "age")%20 + 30,
			Department: departments[hash(i, "dep")%len(departments)],
			IsActive:   hash(i, "active")%100 < 60,
			Balance:    float64(hash(i, "balance")%1000000) / 100,
			CreatedAt:  epoch.AddDate(0, 0, hash(i, "created")%1500),
		}

		if hash(i, "login")%4 != 0 {
			lastLogin := user.CreatedAt.Add(time.Duration(hash(i, "login-offset")%10000) * time.Hour)
			user.LastLogin = &lastLogin
		}

		users = append(users, user)
	}
}

// SetMaxLatency changes the upper bound of the simulated request latency and returns the previous value.
// Zero disables the latency.
func SetMaxLatency(d time.Duration) time.Duration {
	mu.Lock()
	defer mu.Unlock()

	prev := maxLatency
	maxLatency = d
	return prev
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, id int) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	randomSleep(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mu.RLock()
	defer mu.RUnlock()

	idx, err := getUserIndex(id)
	if err != nil {
		return nil, err
	}

	user := users[idx]
	if user.LastLogin != nil {
		lastLogin := *user.LastLogin
		user.LastLogin = &lastLogin
	}
	return &user, nil
}

// ListUserIDs returns the IDs of all users in ascending order.
func ListUserIDs(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	randomSleep(ctx)

	mu.RLock()
	defer mu.RUnlock()

	res := make([]int, 0, len(users))
	for _, u := range users {
		res = append(res, u.ID)
	}
	return res, nil
}

func getUserIndex(id int) (int, error) {
	for i, u := range users {
		if u.ID == id {
			return i, nil
		}
	}

	return -1, ErrNotFound
}

func hash(input ...any) int {
	hasher := fnv.New32()
	fmt.Fprintln(hasher, input...)
	return int(hasher.Sum32())
}

func randomSleep(ctx context.Context) {
	mu.RLock()
	upper := maxLatency
	mu.RUnlock()

	if upper <= 0 {
		return
	}

	dur := time.Duration(rand.Int63n(int64(upper)))
	t := time.NewTimer(dur)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
