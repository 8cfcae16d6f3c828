package prompts

// ============================================================================
// VLM Prompts (Vision Language Model)
// ============================================================================

// VLMSystemPrompt sets the model's role for the OpenAI-compatible provider.
// Gemini receives DescribeImagePrompt alone, as a text part next to the image.
const VLMSystemPrompt = `You are an expert prompt engineer for text-to-image models. You describe images so that they can be recreated faithfully. You answer with the prompt only.`

// DescribeImagePrompt asks for a prompt that recreates a similar image.
const DescribeImagePrompt = `Analyze this image and generate a detailed, descriptive prompt that could be used to recreate a similar image with AI image generation tools.
The prompt should be comprehensive, describing the visual elements, style, composition, lighting, colors, and any other relevant details.
Make it detailed enough that someone could use it to generate a similar image.
You must preserve aspect ratio exact as the original image has or very close to it. No extra explanations, just provide the prompt.`

// ============================================================================
// Connectivity
// ============================================================================

// PingPrompt is a minimal request used to check provider connectivity.
const PingPrompt = `Return the word "Success" and nothing else.`
