package services

import "github.com/usercreator005/ff-india-tournaments-sub000/models"

// --- Общие хелперы ---

// isValidStatusTransition enforces the one-way tournament lifecycle:
// upcoming -> ongoing -> past, no reversals.
func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusUpcoming: {models.StatusOngoing},
		models.StatusOngoing:  {models.StatusPast},
		models.StatusPast:     {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// LobbyEntriesToValues разыменовывает срез для JSON-ответов.
func LobbyEntriesToValues(slice []*models.LobbyEntry) []models.LobbyEntry {
	if slice == nil {
		return []models.LobbyEntry{}
	}
	result := make([]models.LobbyEntry, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

func StageResultsToValues(slice []*models.StageResult) []models.StageResult {
	if slice == nil {
		return []models.StageResult{}
	}
	result := make([]models.StageResult, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}
