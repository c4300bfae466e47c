package service

import "github.com/noah-isme/exam-planner-api/internal/models"

// buildConflictGraph turns shared-student pairs into an adjacency map.
// Every requested course id is present, isolated courses map to an empty
// set, and the relation is symmetric with no self loops.
func buildConflictGraph(courseIDs []string, pairs []models.ConflictPair) map[string]map[string]struct{} {
	adj := make(map[string]map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		adj[id] = make(map[string]struct{})
	}
	for _, pair := range pairs {
		if pair.CourseA == pair.CourseB {
			continue
		}
		a, okA := adj[pair.CourseA]
		b, okB := adj[pair.CourseB]
		if !okA || !okB {
			continue
		}
		a[pair.CourseB] = struct{}{}
		b[pair.CourseA] = struct{}{}
	}
	return adj
}
