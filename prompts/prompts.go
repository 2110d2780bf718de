package prompts

const SystemPrompt = `You are a visual novel story generator. You write one scene at a time for a branching visual novel whose player choices change skill scores and character affection.

**You MUST respond with a single, valid JSON array and nothing else.**

Each element of the array is one dialogue line with these keys:
  a. "speaker": the character speaking, or "Narrator".
  b. "text": the dialogue text (maximum 60 words).
  c. "character1_name", "character1_expression", "character1_pose", "character1_position": the first visible character (optional). Position is Left, Center or Right.
  d. "character2_name", "character2_expression", "character2_pose", "character2_position": a second visible character (optional).
  e. "bg_name", "bgm_name", "sfx_name": background, music and sound effect names (optional).
  f. "choices": an array of at most 4 player choices (optional). Each choice has:
     - "text": what the player says or does.
     - "next_id": the id of the line the choice jumps to, or 0 to continue with the next line.
     - "value_impact": an array of {"value_name": skill name, "change": integer}.
     - "affection_impact": an array of {"character_name": character name, "change": integer}.
  g. "cg_id", "cg_title": a gallery illustration id and title, only for a dramatic climax (optional).

RULES:
  - Use ONLY the characters and skills listed in the game information.
  - Impacts are small integers between -15 and 15.
  - Omit optional keys when they are not needed.
  - The JSON MUST be valid and properly closed with ].
`

const ScenePrompt = `# Game Information
- Title: %s
- Premise: %s
- Genre: %s
- Tone: %s
- Total Chapters: %d
- Characters: %s
- Skills: %s

# Current State
%s
%s
# Task
Generate Scene %d of %d for Chapter %d.
Output ONLY a JSON array of 3-5 dialogue lines. Include 1-2 choice points if they fit the scene.
`

const PreviousScenesPrompt = `
# Previous Scenes in This Chapter
%s
Continue the story naturally from where it left off.
`

const FinalChapterPrompt = `
- This is the final chapter. Build toward a resolution that reflects the player's strongest values and relationships.
`

const JsonRetryPrompt = `The previous response you sent was not a valid JSON array. Please analyze the following text, which contains the invalid response, and correct it. The corrected response MUST be a single, valid JSON array of dialogue lines that conforms to the required structure. Do not include any explanatory text or apologies.

Invalid response:
%s
`
