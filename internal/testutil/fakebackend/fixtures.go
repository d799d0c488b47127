package fakebackend

// Default fixtures. Behavioral records arrive newest first, as the
// backend orders them.
//
// Aggregates of DefaultBehavioral: average screen time 7.0h, focus 0.6
// (the middle record has no focus and counts as 0.5), sleep 7.0h (the
// last record has no sleep and counts as 7); app hours social 4,
// entertainment 4, educational 6, productivity 4.

// DefaultProfile returns the profile fixture.
func DefaultProfile() map[string]any {
	return map[string]any{
		"id":                   11,
		"user_id":              1,
		"name":                 "Ada Lovelace",
		"major":                "Computer Science",
		"semester":             5,
		"gpa":                  3.46,
		"attendance":           91.6,
		"study_hours_per_week": 24.5,
		"project_count":        4,
		"vector_id":            nil,
		"created_at":           "2024-01-10T09:00:00",
		"updated_at":           "2024-03-01T12:30:00",
	}
}

// DefaultBehavioral returns three days of telemetry.
func DefaultBehavioral() []map[string]any {
	return []map[string]any{
		{
			"id": 3, "date": "2024-03-03",
			"screen_time_hours": 8.0, "social_media_hours": 2.0, "entertainment_hours": 1.0,
			"educational_app_hours": 3.0, "productivity_hours": 2.0,
			"focus_score": 0.7, "sleep_duration_hours": 7.5, "sleep_quality": "good",
			"synced_at": "2024-03-03T23:00:00",
		},
		{
			"id": 2, "date": "2024-03-02",
			"screen_time_hours": 6.0, "social_media_hours": 1.0, "entertainment_hours": 1.0,
			"educational_app_hours": 2.0, "productivity_hours": 1.0,
			"focus_score": nil, "sleep_duration_hours": 6.5, "sleep_quality": nil,
			"synced_at": "2024-03-02T23:00:00",
		},
		{
			"id": 1, "date": "2024-03-01",
			"screen_time_hours": 7.0, "social_media_hours": 1.0, "entertainment_hours": 2.0,
			"educational_app_hours": 1.0, "productivity_hours": 1.0,
			"focus_score": 0.6, "sleep_duration_hours": nil, "sleep_quality": nil,
			"synced_at": "2024-03-01T23:00:00",
		},
	}
}

// DefaultSkills returns three assessed skills.
func DefaultSkills() []map[string]any {
	return []map[string]any{
		{"id": 1, "skill_name": "Python", "proficiency_score": 85.0, "quiz_score": 80.0, "voice_score": 90.0,
			"market_weight": 2.0, "last_assessed_at": "2024-02-20T10:00:00", "created_at": "2024-01-10T09:00:00"},
		{"id": 2, "skill_name": "React", "proficiency_score": 75.0, "quiz_score": nil, "voice_score": nil,
			"market_weight": 2.0, "last_assessed_at": "2024-02-21T10:00:00", "created_at": "2024-01-10T09:00:00"},
		{"id": 3, "skill_name": "SQL", "proficiency_score": 62.0, "quiz_score": 62.0, "voice_score": nil,
			"market_weight": 1.5, "last_assessed_at": "2024-02-22T10:00:00", "created_at": "2024-01-10T09:00:00"},
	}
}

// DefaultPrediction returns a prediction with four similar alumni.
func DefaultPrediction() map[string]any {
	return map[string]any{
		"trajectory_score": 72.5,
		"component_scores": map[string]any{"academic": 80.0, "behavioral": 55.0, "skills": 65.0},
		"component_weights": map[string]any{"academic": 0.4, "behavioral": 0.35, "skills": 0.25},
		"confidence":           0.82,
		"margin_of_error":      6.5,
		"trend":                "improving",
		"velocity":             1.2,
		"predicted_tier":       "Tier 2",
		"interpretation":       "Solid trajectory with room to improve behavioral habits.",
		"similar_alumni_count": 4,
		"similar_alumni": []map[string]any{
			{"alumni_id": 101, "similarity_score": 0.93, "company_tier": "Tier 1", "outcome_score": 88.4},
			{"alumni_id": 102, "similarity_score": 0.88, "company_tier": "Tier 2", "outcome_score": 74.6},
			{"alumni_id": 103, "similarity_score": 0.81, "company_tier": "Tier 2", "outcome_score": 70.2},
			{"alumni_id": 104, "similarity_score": 0.77, "company_tier": "Tier 3", "outcome_score": 58.9},
		},
	}
}

// DefaultInsights returns insights with a poor screen time comparison.
func DefaultInsights() map[string]any {
	return map[string]any{
		"correlations": map[string]any{
			"screen_time_vs_gpa":        -0.45,
			"focus_score_vs_trajectory": 0.62,
			"sleep_vs_academic":         0.38,
			"sample_size":               120,
			"optimal_ranges": map[string]any{
				"screen_time": map[string]any{"min": 4.0, "max": 6.0, "median": 5.0},
				"focus_score": map[string]any{"min": 0.6, "max": 0.9, "median": 0.75},
				"sleep":       map[string]any{"min": 7.0, "max": 8.5, "median": 7.5},
			},
			"interpretation": map[string]any{
				"screen_time_vs_gpa":        "Moderate negative correlation",
				"focus_score_vs_trajectory": "Strong positive correlation",
				"sleep_vs_academic":         "Weak positive correlation",
			},
		},
		"at_risk_flags": []map[string]any{
			{"flag": "excessive_screen_time", "severity": "high",
				"description": "Screen time above 8 hours/day", "metric_value": 9.0, "threshold": 8.0},
		},
		"comparison": map[string]any{
			"screen_time": map[string]any{"student": 9.0, "optimal": 5.0, "status": "poor"},
			"focus_score": map[string]any{"student": 0.6, "optimal": 0.75, "status": "poor"},
			"sleep":       map[string]any{"student": 7.0, "optimal": 7.5, "status": "fair"},
		},
		"recommendations": []string{
			"Reduce screen time to under 8 hours/day. Use app blockers during study hours.",
			"Your focus score is below optimal. Increase time on educational apps and productivity tools.",
			"URGENT: Multiple risk factors detected. Reduce social media, improve sleep, and seek academic support.",
			"Your sleep duration is below optimal. Successful alumni average 7.5 hours/night.",
		},
	}
}

// DefaultComparison returns the standalone alumni comparison.
func DefaultComparison() map[string]any {
	return map[string]any{
		"student_id":     11,
		"screen_time":    map[string]any{"student": 9.0, "optimal": 5.0, "status": "poor"},
		"focus_score":    map[string]any{"student": 0.6, "optimal": 0.75, "status": "poor"},
		"sleep":          map[string]any{"student": 7.0, "optimal": 7.5, "status": "fair"},
		"overall_status": "poor",
		"message":        "Your behavioral patterns need improvement compared to successful alumni.",
	}
}
