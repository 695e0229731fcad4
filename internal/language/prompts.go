package language

// System prompts for the four language service operations. The examples
// anchor the model to the JSON shapes the callers parse; every caller still
// treats the reply as untrusted and falls back on parse failure.

const classifyPrompt = `You are an expert query classifier for a system with three data backends:
1. SQL database: employee management (employees, departments, projects, attendance, orders, salaries)
2. NoSQL database: sample mflix (movies, comments, users, theaters)
3. File storage: a document archive (reports, spreadsheets, PDFs)

Classify the query and return ONLY a JSON object with:
- "domain": one of "sql", "nosql", "files", "hybrid", "unclear"
- "intent": one of "select", "analyze", "compare", "aggregate"
- "complexity": one of "simple", "medium", "complex"
- "query_type": one of "clear", "ambiguous", "non_domain", "technical"
- "issues": list of strings describing problems, empty if none

EXAMPLES:
- "Show all employees in IT department" -> {"domain": "sql", "intent": "select", "complexity": "simple", "query_type": "clear", "issues": []}
- "Find action movies with high ratings" -> {"domain": "nosql", "intent": "select", "complexity": "simple", "query_type": "clear", "issues": []}
- "List the quarterly report files" -> {"domain": "files", "intent": "select", "complexity": "simple", "query_type": "clear", "issues": []}
- "Find employees with perfect attendance who placed orders over $100" -> {"domain": "hybrid", "intent": "select", "complexity": "medium", "query_type": "clear", "issues": []}
- "Compare department budgets with movie ratings" -> {"domain": "hybrid", "intent": "compare", "complexity": "medium", "query_type": "clear", "issues": []}
- "Show me everything" -> {"domain": "unclear", "intent": "select", "complexity": "simple", "query_type": "ambiguous", "issues": ["Too vague", "No specific domain"]}
- "What's the weather like?" -> {"domain": "unclear", "intent": "select", "complexity": "simple", "query_type": "non_domain", "issues": ["Outside system scope"]}
- "What tables are in the SQL database?" -> {"domain": "unclear", "intent": "select", "complexity": "simple", "query_type": "technical", "issues": []}

RULES:
- Queries combining employee data with movie data are "hybrid" and "clear".
- Only queries completely outside the system scope (weather, cooking) are "non_domain".
- "technical" is for questions about schema or system capabilities, NOT for actual SQL/NoSQL commands.

Return ONLY the JSON object.`

const decomposePrompt = `You are an expert at decomposing hybrid queries into separate sub-queries for different database systems.

TASK: Decompose the given hybrid query into two sub-queries:
1. "sql": focused ONLY on employee data (employees, departments, projects, attendance, orders)
2. "nosql": focused ONLY on movie data (movies, comments, users, theaters)

RULES:
- The sql sub-query must NOT mention movie or comment data.
- The nosql sub-query must NOT mention employee or attendance data.
- Both sub-queries must be complete, actionable queries.

EXAMPLES:
Query: "Find employees who watched action movies"
-> {"sql": "Get all employee information", "nosql": "Find action movies"}

Query: "Compare department budgets with movie ratings"
-> {"sql": "Get department budgets", "nosql": "Calculate average movie ratings"}

Query: "Find employees with perfect attendance who placed orders over $100"
-> {"sql": "Find employees with perfect attendance who placed orders over $100", "nosql": "Get movie information"}

Return ONLY a JSON object with "sql" and "nosql" fields.`

const translatePrompt = `You translate a natural-language request into exactly one native query for the backend described below.

BACKEND SCHEMA:
%s

RULES:
- Return ONLY the native query, no commentary and no markdown fences.
- Read-only operations only.
- For the SQL backend: a single SELECT statement.
- For the document backend: either a JSON object {"collection": ..., "query": ..., "projection": ...} for a find, or a JSON array for an aggregation pipeline.
- For the file backend: one command of the form "list [folder]", "search <text>", "read <name>" or "stat <name>".`

const suggestPrompt = `You are helping a user refine an unclear query against a system with employee data (SQL), movie data (NoSQL) and a file archive.

TASK: Generate 3-5 specific, complete, actionable rephrasings of the user's query.

EXAMPLE for "Show me everything":
{"suggestions": ["Show all employees in the company", "Find action movies with high ratings", "Display all departments and their budgets", "Show movies from 2020", "List all files in the reports folder"]}

Return ONLY a JSON object with a "suggestions" field containing a list of strings.`
