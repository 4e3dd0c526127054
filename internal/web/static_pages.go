package web

import "net/http"

type card struct {
	Title       string
	Description string
}

type landingPage struct {
	Features      []card
	SeekerSteps   []card
	EmployerSteps []card
}

type aboutPage struct {
	Features []card
	Values   []card
}

//nolint:gochecknoglobals
var (
	landing = landingPage{
		Features: []card{
			{"Smart Job Matching", "Our AI matches your skills with the most relevant job openings automatically."},
			{"Direct Applications", "Apply with one click and track all your applications in one place."},
			{"Secure Messaging", "Communicate directly with employers in a protected environment."},
		},
		SeekerSteps: []card{
			{"Create Your Profile", "Highlight your skills, experience, and career preferences to attract the right employers."},
			{"Browse & Apply", "Find jobs that match your profile and submit applications with your resume and cover letter."},
			{"Track & Communicate", "Monitor application statuses and message employers directly through our platform."},
		},
		EmployerSteps: []card{
			{"Post Jobs", "List your openings with detailed requirements and let our system find qualified candidates."},
			{"Review Applications", "View candidate profiles, resumes, and cover letters in a streamlined dashboard."},
			{"Hire Efficiently", "Send offers and communicate with top candidates without leaving SkillSphere."},
		},
	}

	about = aboutPage{
		Features: []card{
			{"AI-Driven Skill Matching", "Smartly pairs learners with curated courses and mentors."},
			{"Global Course Catalog", "Access 5,000+ courses across tech, design, and business."},
			{"Secure Learning Space", "User privacy and data security are our top priorities."},
			{"Progress Analytics", "Track your learning journey and skill growth in real-time."},
			{"Hands-on Practice Labs", "Apply your skills with interactive coding environments."},
			{"Verified Certification", "Earn shareable credentials that employers trust."},
		},
		Values: []card{
			{"Trust & Transparency", "We ensure your learning data is secure and transparently used."},
			{"Curiosity", "We foster a culture of lifelong learning and creativity."},
			{"Community", "Learning is better together. Our platform thrives on collaboration."},
		},
	}
)

func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "landing.html", "SkillSphere", landing)
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about.html", "About", about)
}
