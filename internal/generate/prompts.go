package generate

import "fmt"

const roadmapSystemInstruction = `You are a Principal Curriculum Architect specializing in Artificial Intelligence.
Your task is to intelligently merge two complex roadmaps: "AI Engineer Roadmap" and "AI Agents Roadmap".
You must identify common foundations (Python, Math, APIs), distinct engineering paths (MLOps, Deployment, RAG), and agentic paths (ReAct, Tool Use, Multi-Agent Orchestration).
Create a unified, logical dependency tree starting from a single "Start Here" root.
Categorize nodes strictly.
The output must be a flat list of nodes where each node (except root) has a 'parentId'.`

const roadmapPrompt = `Generate a comprehensive, combined roadmap for an 'AI Engineer' focusing on 'AI Agents'. The tree should have at least 20-25 nodes to cover depth. Ensure there is a single root node with id 'root'.`

func detailsPrompt(label, description string) string {
	return fmt.Sprintf(`Provide deep dive details for the roadmap node: %q.
Context: %s.

You are a senior developer mentor. Your goal is to provide the BEST video-based learning resources.
1. Summary: Concise technical explanation.
2. Learning Objectives: 3-4 bullet points.
3. Resources: STRICTLY provide 3-5 high-quality video resources.
   - PRIORITY: YouTube tutorials (free, accessible), Udemy courses (comprehensive), Coursera (academic/theory).
   - MUST include a valid 'url' for every resource. If a direct link is not known, generate a Google Search URL (e.g., "https://www.google.com/search?q=LangChain+tutorial+youtube").
   - Label the title with the platform (e.g., "YouTube: Intro to Vectors", "Udemy: Master LangChain").
   - Mix theory and hands-on coding.
4. Project Idea: A specific, buildable micro-project.`, label, description)
}
