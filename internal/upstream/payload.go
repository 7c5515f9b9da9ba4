package upstream

// payload mirrors the GraphQL-shaped body returned by the aggregation worker.
// The top-level error key is checked separately for presence.
type payload struct {
	Data struct {
		Repository *struct {
			Labels struct {
				Nodes []struct {
					Issues struct {
						Nodes []rawIssue `json:"nodes"`
					} `json:"issues"`
					PullRequests struct {
						Nodes []rawPull `json:"nodes"`
					} `json:"pullRequests"`
				} `json:"nodes"`
			} `json:"labels"`
		} `json:"repository"`
	} `json:"data"`
}

type person struct {
	Name string `json:"name"`
}

type rawIssue struct {
	UpdatedAt string `json:"updatedAt"`
	Title     string `json:"title"`
	Author    person `json:"author"`
	State     string `json:"state"`
}

type rawPull struct {
	UpdatedAt string  `json:"updatedAt"`
	Title     string  `json:"title"`
	Author    person  `json:"author"`
	MergedBy  *person `json:"mergedBy"`
	State     string  `json:"state"`
	Reviews   struct {
		Users []struct {
			User person `json:"user"`
		} `json:"users"`
	} `json:"reviews"`
}
