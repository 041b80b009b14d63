package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/harrisonrobin/habitask/pkg/model"
)

// A deadline this many days away or closer makes a task urgent.
const urgentWithinDays = 3

var (
	headingRegex  = regexp.MustCompile(`^\*+\s+(TODO|DONE)\b\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:[\w@:]+:))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})[^>]*>`)
	idRegex       = regexp.MustCompile(`^:ID:\s+(\S+)`)
	otherHeading  = regexp.MustCompile(`^\*+\s`)
)

var priorityImportance = map[string]int{
	"A": 75,
	"B": 50,
	"C": 25,
}

// parseFile parses an Org-mode file and returns a slice of tasks.
func parseFile(filePath string, today model.Date) ([]model.Task, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, today)
}

// ParseFiles parses multiple Org-mode files and returns a slice of tasks.
func ParseFiles(filePaths []string, today model.Date) ([]model.Task, error) {
	var allTasks []model.Task
	for _, filePath := range filePaths {
		tasks, err := parseFile(filePath, today)
		if err != nil {
			return nil, err
		}
		allTasks = append(allTasks, tasks...)
	}
	return allTasks, nil
}

// Parse reads TODO and DONE headings from r. Urgency is derived from the
// deadline relative to today: urgent when due within three days or past.
// A heading without an :ID: property gets a fresh uuid.
func Parse(r io.Reader, today model.Date) ([]model.Task, error) {
	scanner := bufio.NewScanner(r)
	var tasks []model.Task
	var current *model.Task

	flush := func() {
		if current == nil {
			return
		}
		if current.ID == "" {
			current.ID = uuid.NewString()
		}
		current.Urgency = urgency(current.DueDate, today)
		tasks = append(tasks, *current)
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if matches := headingRegex.FindStringSubmatch(line); matches != nil {
			flush()
			importance, ok := priorityImportance[matches[2]]
			if !ok {
				importance = 50
			}
			current = &model.Task{
				Name:       strings.TrimSpace(matches[3]),
				Importance: importance,
				Completed:  matches[1] == "DONE",
			}
			if matches[4] != "" {
				current.Tags = strings.Split(strings.Trim(matches[4], ":"), ":")
			}
			if current.Name == "" {
				current = nil
			}
			continue
		}
		if otherHeading.MatchString(line) {
			flush()
			continue
		}
		if current == nil {
			continue
		}

		if matches := deadlineRegex.FindStringSubmatch(line); matches != nil {
			if due, err := model.ParseDate(matches[1]); err == nil {
				current.DueDate = &due
			}
		} else if matches := idRegex.FindStringSubmatch(line); matches != nil {
			current.ID = matches[1]
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func urgency(due *model.Date, today model.Date) int {
	if due != nil && today.DaysUntil(*due) <= urgentWithinDays {
		return 75
	}
	return 25
}

// FilterTasks keeps the tasks carrying tag.
func FilterTasks(tasks []model.Task, tag string) []model.Task {
	var filteredTasks []model.Task
	for _, task := range tasks {
		for _, t := range task.Tags {
			if t == tag {
				filteredTasks = append(filteredTasks, task)
				break
			}
		}
	}
	return filteredTasks
}
